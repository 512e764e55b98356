package xcodegen

import (
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/write"
)

// MacrosFileName is the template-macros file Xcode reads from a project's
// shared data directory.
const MacrosFileName = "IDETemplateMacros.plist"

// Literal placeholders keep the header recognizably unfinished when the
// context carries no year or holder.
const (
	placeholderYear   = "YEAR"
	placeholderHolder = "COPYRIGHT_HOLDER"
)

// WriteTemplateMacros writes xcshareddata/IDETemplateMacros.plist into the
// generated .xcodeproj so files added later in Xcode carry the project's
// copyright header.
func WriteTemplateMacros(projectPath, year, holder string) error {
	if year == "" {
		year = placeholderYear
	}
	if holder == "" {
		holder = placeholderHolder
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(`DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd"`)

	plist := doc.CreateElement("plist")
	plist.CreateAttr("version", "1.0")
	dict := plist.CreateElement("dict")
	dict.CreateElement("key").SetText("FILEHEADER")
	dict.CreateElement("string").SetText(
		"\n//  Copyright © " + year + " " + holder + ". All rights reserved.\n//")

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "encoding template macros plist")
	}

	path := filepath.Join(projectPath, "xcshareddata", MacrosFileName)
	return write.File(path, data, write.Options{MkdirParents: true})
}
