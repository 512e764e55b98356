package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/manifest"
	"github.com/cpcf/bootstrapp/spec"
	"github.com/cpcf/bootstrapp/template"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(zerolog.Nop()),
		WithClock(func() time.Time { return testClock }),
		WithOutputRoot(t.TempDir()),
	}
	return New(append(base, opts...)...)
}

func writeBundle(t *testing.T, specJSON string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Bundle")
	writeBundleFile(t, root, spec.SpecFileName, specJSON)
	for rel, content := range files {
		writeBundleFile(t, root, rel, content)
	}
	return root
}

func writeBundleFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func readOutput(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

type fakeGenerator struct {
	specPath   string
	projectDir string
	workDir    string
	calls      int

	// produce names a .xcodeproj directory to create on success; empty
	// simulates a generator that exits cleanly without producing one.
	produce string
	fail    error
}

func (g *fakeGenerator) Generate(specPath, projectDir, workDir string) error {
	g.calls++
	g.specPath, g.projectDir, g.workDir = specPath, projectDir, workDir
	if g.fail != nil {
		return g.fail
	}
	if g.produce != "" {
		return os.MkdirAll(filepath.Join(projectDir, g.produce), 0o755)
	}
	return nil
}

const generalSpecJSON = `{
	"specificationVersion": "1.0",
	"templateVersion": "2.1.0",
	"id": "com.acme.general",
	"type": "General",
	"description": "General purpose test template.",
	"outputDirectoryName": "<{ NAME }>",
	"substitutions": {
		"DOT": ".",
		"AUTHOR": "ACME Corp"
	},
	"parameters": [
		{"name": "Project name", "id": "NAME", "kind": "String", "validationRegex": "[A-Za-z][A-Za-z0-9]*"},
		{"name": "Initialize git", "id": "GIT_INIT", "kind": "Bool", "default": true}
	],
	"parametrizableFiles": ["README\\.md", "Sources/.*", "assets/.*"],
	"includeFiles": [
		{"if": "GIT_INIT", "files": ["<{ DOT }>gitignore"]}
	],
	"packages": [
		{"name": "Alamofire", "url": "https://github.com/Alamofire/Alamofire", "version": "5.8.0"},
		{"name": "SnapKit", "url": "https://github.com/SnapKit/SnapKit", "version": "5.7.0"}
	]
}`

func generalBundle(t *testing.T) string {
	t.Helper()
	root := writeBundle(t, generalSpecJSON, map[string]string{
		"Content/README.md": "# <{ NAME }>\n\nBy <{ AUTHOR }>.\n" +
			"<{ if GIT_INIT }>\nGit ready.\n<{ end }>\n" +
			"<{ for pkg in packages }>\n- <{ pkg.name }> <{ pkg.version }>\n<{ end }>\n",
		"Content/Sources/<{ NAME }>/main.swift": "print(\"<{ NAME }>\")\n",
		"Content/<{ DOT }>gitignore":            ".build/\n",
		"Content/assets/logo.bin":               "\xff\xfe\x00B",
		"Content/bin/run.sh":                    "#!/bin/sh\n",
		"Content/docs/" + PlaceholderName:       "",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "Content/bin/run.sh"), 0o755))
	return root
}

func TestInstantiateGeneralTemplate(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Instantiate(Request{
		BundlePath: generalBundle(t),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.NoError(t, err)

	assert.Equal(t, "MyApp", filepath.Base(result.OutputDir))
	assert.Empty(t, result.ProjectPath)
	assert.Equal(t, result.OutputDir, result.Path())
	assert.Equal(t, 5, result.FilesWritten)

	assert.Equal(t,
		"# MyApp\n\nBy ACME Corp.\nGit ready.\n- Alamofire 5.8.0\n- SnapKit 5.7.0\n",
		readOutput(t, result.OutputDir, "README.md"))
	assert.Equal(t, "print(\"MyApp\")\n",
		readOutput(t, result.OutputDir, "Sources/MyApp/main.swift"))
	assert.Equal(t, ".build/\n", readOutput(t, result.OutputDir, ".gitignore"))
	assert.Equal(t, "\xff\xfe\x00B", readOutput(t, result.OutputDir, "assets/logo.bin"),
		"non UTF-8 parametrizable files fall back to a byte copy")

	info, err := os.Stat(filepath.Join(result.OutputDir, "bin/run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(result.OutputDir, "docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "placeholder keeps its directory, and only the directory")
	_, err = os.Stat(filepath.Join(result.OutputDir, "docs", PlaceholderName))
	assert.True(t, os.IsNotExist(err))
}

func TestInstantiateWritesManifest(t *testing.T) {
	e := newTestEngine(t, WithVersion("1.2.3"))
	result, err := e.Instantiate(Request{
		BundlePath: generalBundle(t),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.NoError(t, err)

	m, err := manifest.Read(result.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, "bootstrapp 1.2.3", m.Generator)
	assert.Equal(t, "com.acme.general", m.TemplateID)
	assert.Equal(t, "2.1.0", m.TemplateVersion)
	assert.WithinDuration(t, testClock, m.Generated, 0)

	paths := make([]string, len(m.Entries))
	actions := make(map[string]manifest.Action, len(m.Entries))
	for i, entry := range m.Entries {
		paths[i] = entry.Path
		actions[entry.Path] = entry.Action
	}
	assert.Equal(t, []string{
		".gitignore",
		"README.md",
		"Sources/MyApp/main.swift",
		"assets/logo.bin",
		"bin/run.sh",
	}, paths, "entries follow walk order")
	assert.Equal(t, map[string]manifest.Action{
		"README.md":                manifest.ActionRendered,
		"Sources/MyApp/main.swift": manifest.ActionRendered,
		".gitignore":               manifest.ActionCopied,
		"assets/logo.bin":          manifest.ActionCopied,
		"bin/run.sh":               manifest.ActionCopied,
	}, actions)
}

func TestInstantiateGitDisabled(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Instantiate(Request{
		BundlePath: generalBundle(t),
		Params: map[string]template.Value{
			"NAME":     template.StringValue("MyApp"),
			"GIT_INIT": template.BoolValue(false),
		},
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(result.OutputDir, ".gitignore"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "# MyApp\n\nBy ACME Corp.\n- Alamofire 5.8.0\n- SnapKit 5.7.0\n",
		readOutput(t, result.OutputDir, "README.md"))
}

func TestInstantiateExcludePackages(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Instantiate(Request{
		BundlePath:      generalBundle(t),
		Params:          map[string]template.Value{"NAME": template.StringValue("MyApp")},
		ExcludePackages: []string{"SnapKit"},
	})
	require.NoError(t, err)
	assert.Equal(t, "# MyApp\n\nBy ACME Corp.\nGit ready.\n- Alamofire 5.8.0\n",
		readOutput(t, result.OutputDir, "README.md"))
}

func TestInstantiateReplacesPreviousOutput(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t, WithOutputRoot(root))
	req := Request{
		BundlePath: generalBundle(t),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	}

	first, err := e.Instantiate(req)
	require.NoError(t, err)
	stale := filepath.Join(first.OutputDir, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	second, err := e.Instantiate(req)
	require.NoError(t, err)
	assert.Equal(t, first.OutputDir, second.OutputDir)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "previous output is removed wholesale")
}

func TestInstantiateMissingParameter(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Instantiate(Request{BundlePath: generalBundle(t)})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrParamResolution))
	assert.Contains(t, err.Error(), `"NAME"`)
}

func TestInstantiateRejectsInvalidParameter(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Instantiate(Request{
		BundlePath: generalBundle(t),
		Params:     map[string]template.Value{"NAME": template.StringValue("1BadName")},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrParamResolution))
}

func TestInstantiateBundleMissing(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Instantiate(Request{BundlePath: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
	assert.Contains(t, err.Error(), "not found")
}

const excludeSpecJSON = `{
	"specificationVersion": "1.0",
	"templateVersion": "1.0.0",
	"id": "com.acme.exclude",
	"type": "General",
	"description": "Subtree exclusion.",
	"outputDirectoryName": "out",
	"parameters": [
		{"name": "Extras", "id": "WITH_EXTRAS", "kind": "Bool", "default": false}
	],
	"includeDirectories": [
		{"if": "WITH_EXTRAS", "directories": ["extras"]}
	]
}`

func TestInstantiateExcludesSubtree(t *testing.T) {
	bundle := writeBundle(t, excludeSpecJSON, map[string]string{
		"Content/keep.txt":          "kept\n",
		"Content/extras/a.txt":      "a\n",
		"Content/extras/deep/b.txt": "b\n",
	})

	e := newTestEngine(t)
	result, err := e.Instantiate(Request{BundlePath: bundle})
	require.NoError(t, err)

	assert.Equal(t, "kept\n", readOutput(t, result.OutputDir, "keep.txt"))
	_, err = os.Stat(filepath.Join(result.OutputDir, "extras"))
	assert.True(t, os.IsNotExist(err), "excluded directories are never created")
	assert.Equal(t, 1, result.FilesWritten)
}

const importSpecJSON = `{
	"specificationVersion": "1.0",
	"templateVersion": "1.0.0",
	"id": "com.acme.import",
	"type": "General",
	"description": "Imports read the bundle, not the output.",
	"outputDirectoryName": "out",
	"parameters": [
		{"name": "Shared", "id": "INCLUDE_SHARED", "kind": "Bool", "default": false}
	],
	"parametrizableFiles": ["main\\.txt"],
	"includeDirectories": [
		{"if": "INCLUDE_SHARED", "directories": ["shared"]}
	]
}`

func TestInstantiateImportsFromExcludedSource(t *testing.T) {
	bundle := writeBundle(t, importSpecJSON, map[string]string{
		"Content/main.txt":          "<{ import \"shared/header.txt\" }>\nBody\n",
		"Content/shared/header.txt": "// shared header\n",
	})

	e := newTestEngine(t)
	result, err := e.Instantiate(Request{BundlePath: bundle})
	require.NoError(t, err)

	assert.Equal(t, "// shared header\nBody\n", readOutput(t, result.OutputDir, "main.txt"))
	_, err = os.Stat(filepath.Join(result.OutputDir, "shared"))
	assert.True(t, os.IsNotExist(err))
}

func TestInstantiateOutputNameWithSeparator(t *testing.T) {
	specJSON := `{
		"specificationVersion": "1.0",
		"templateVersion": "1.0.0",
		"id": "com.acme.badname",
		"type": "General",
		"description": "Bad output name.",
		"outputDirectoryName": "<{ NAME }>/sub",
		"parameters": [{"name": "Name", "id": "NAME", "kind": "String"}]
	}`
	bundle := writeBundle(t, specJSON, map[string]string{"Content/a.txt": "a\n"})

	e := newTestEngine(t)
	_, err := e.Instantiate(Request{
		BundlePath: bundle,
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
	assert.Contains(t, err.Error(), "single name")
}

func TestInstantiateOutputNameRendersEmpty(t *testing.T) {
	specJSON := `{
		"specificationVersion": "1.0",
		"templateVersion": "1.0.0",
		"id": "com.acme.emptyname",
		"type": "General",
		"description": "Empty output name.",
		"outputDirectoryName": "<{ NAME }>",
		"parameters": [{"name": "Name", "id": "NAME", "kind": "String", "default": ""}]
	}`
	bundle := writeBundle(t, specJSON, map[string]string{"Content/a.txt": "a\n"})

	e := newTestEngine(t)
	_, err := e.Instantiate(Request{BundlePath: bundle})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
	assert.Contains(t, err.Error(), "empty string")
}

const xcodeSpecJSON = `{
	"specificationVersion": "1.0",
	"templateVersion": "1.0.0",
	"id": "com.acme.app",
	"type": "Xcode Project",
	"description": "App template.",
	"outputDirectoryName": "<{ NAME }>",
	"projectSpecification": "project.yml",
	"substitutions": {"COPYRIGHT_HOLDER": "ACME Corp"},
	"parameters": [{"name": "Project name", "id": "NAME", "kind": "String"}],
	"parametrizableFiles": ["project\\.yml"]
}`

func xcodeBundle(t *testing.T, withPresets bool) string {
	t.Helper()
	files := map[string]string{
		"Content/project.yml": "name: <{ NAME }>\ntargets:\n  <{ NAME }>:\n    type: application\n",
	}
	if withPresets {
		files["Presets/AppIcon.png"] = "icon-bytes"
	}
	return writeBundle(t, xcodeSpecJSON, files)
}

func TestInstantiateXcodeProject(t *testing.T) {
	gen := &fakeGenerator{produce: "MyApp.xcodeproj"}
	e := newTestEngine(t, WithGenerator(gen))

	result, err := e.Instantiate(Request{
		BundlePath: xcodeBundle(t, true),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, filepath.Join(result.OutputDir, "project.yml"), gen.specPath)
	assert.Equal(t, result.OutputDir, gen.projectDir)
	assert.Equal(t, filepath.Join(result.OutputDir, PresetsDirName), gen.workDir,
		"bundled presets become the generator working directory")
	assert.Equal(t, "icon-bytes",
		readOutput(t, result.OutputDir, "Presets/AppIcon.png"))

	assert.Equal(t, filepath.Join(result.OutputDir, "MyApp.xcodeproj"), result.ProjectPath)
	assert.Equal(t, result.ProjectPath, result.Path())
	assert.Equal(t, "name: MyApp\ntargets:\n  MyApp:\n    type: application\n",
		readOutput(t, result.OutputDir, "project.yml"))

	plist := readOutput(t, result.ProjectPath, "xcshareddata/IDETemplateMacros.plist")
	assert.Contains(t, plist, "FILEHEADER")
	assert.Contains(t, plist, "Copyright © 2024 ACME Corp")
}

func TestInstantiateXcodeWithoutPresets(t *testing.T) {
	gen := &fakeGenerator{produce: "MyApp.xcodeproj"}
	e := newTestEngine(t, WithGenerator(gen))

	result, err := e.Instantiate(Request{
		BundlePath: xcodeBundle(t, false),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.NoError(t, err)
	assert.Equal(t, result.OutputDir, gen.workDir)
}

func TestInstantiateXcodeGeneratorProducesNothing(t *testing.T) {
	e := newTestEngine(t, WithGenerator(&fakeGenerator{}))
	_, err := e.Instantiate(Request{
		BundlePath: xcodeBundle(t, false),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExternalTool))
	assert.Contains(t, err.Error(), "no .xcodeproj")
}

func TestInstantiateXcodeGeneratorFails(t *testing.T) {
	gen := &fakeGenerator{fail: errors.New(errors.ErrExternalTool, "generator failed: boom")}
	e := newTestEngine(t, WithGenerator(gen))
	_, err := e.Instantiate(Request{
		BundlePath: xcodeBundle(t, false),
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExternalTool))
	assert.Contains(t, err.Error(), "boom")
}

func TestInstantiateXcodeMissingProjectSpec(t *testing.T) {
	specJSON := `{
		"specificationVersion": "1.0",
		"templateVersion": "1.0.0",
		"id": "com.acme.nospec",
		"type": "Xcode Project",
		"description": "Missing project spec.",
		"outputDirectoryName": "out",
		"projectSpecification": "missing.yml"
	}`
	bundle := writeBundle(t, specJSON, map[string]string{"Content/other.txt": "x\n"})

	e := newTestEngine(t, WithGenerator(&fakeGenerator{produce: "Out.xcodeproj"}))
	_, err := e.Instantiate(Request{BundlePath: bundle})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
	assert.Contains(t, err.Error(), `"missing.yml"`)
}

func TestInstantiateXcodeInvalidProjectSpec(t *testing.T) {
	bundle := writeBundle(t, xcodeSpecJSON, map[string]string{
		"Content/project.yml": "name: [unclosed\n",
	})

	e := newTestEngine(t, WithGenerator(&fakeGenerator{produce: "MyApp.xcodeproj"}))
	_, err := e.Instantiate(Request{
		BundlePath: bundle,
		Params:     map[string]template.Value{"NAME": template.StringValue("MyApp")},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
	assert.Contains(t, err.Error(), "not valid YAML")
}

func TestInstantiateSwiftPackageBundle(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Instantiate(Request{
		BundlePath: filepath.Join("..", "testdata", "swift-package"),
		Params:     map[string]template.Value{"PACKAGE_NAME": template.StringValue("NetKit")},
	})
	require.NoError(t, err)
	assert.Equal(t, "NetKit", filepath.Base(result.OutputDir))

	pkg := readOutput(t, result.OutputDir, "Package.swift")
	assert.Contains(t, pkg, "// swift-tools-version:5.10")
	assert.Contains(t, pkg, `name: "NetKit",`)
	assert.Contains(t, pkg, `.package(url: "https://github.com/apple/swift-argument-parser", from: "1.3.0"),`)
	assert.Contains(t, pkg, `.testTarget(name: "NetKitTests", dependencies: ["NetKit"]),`)

	license := readOutput(t, result.OutputDir, "LICENSE")
	assert.Contains(t, license, "Copyright (c) 2024 A. Developer")

	readme := readOutput(t, result.OutputDir, "README.md")
	assert.Contains(t, readme, "# NetKit")
	assert.Contains(t, readme, "swift test")

	assert.Contains(t, readOutput(t, result.OutputDir, "Sources/NetKit/NetKit.swift"), "public struct NetKit")
	assert.Contains(t, readOutput(t, result.OutputDir, "Tests/NetKitTests/NetKitTests.swift"), "@testable import NetKit")
	assert.Contains(t, readOutput(t, result.OutputDir, ".gitignore"), "/.build")
}

func TestInstantiateSwiftPackageBundleTrimmed(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Instantiate(Request{
		BundlePath: filepath.Join("..", "testdata", "swift-package"),
		Params: map[string]template.Value{
			"PACKAGE_NAME": template.StringValue("NetKit"),
			"WITH_TESTS":   template.BoolValue(false),
			"LICENSE_TYPE": template.StringValue("None"),
		},
	})
	require.NoError(t, err)

	for _, absent := range []string{"Tests", "LICENSE"} {
		_, statErr := os.Stat(filepath.Join(result.OutputDir, absent))
		assert.True(t, os.IsNotExist(statErr), absent)
	}
	assert.NotContains(t, readOutput(t, result.OutputDir, "Package.swift"), ".testTarget")
	assert.NotContains(t, readOutput(t, result.OutputDir, "README.md"), "swift test")
}
