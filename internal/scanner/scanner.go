// Package scanner enumerates the script and component files of a workspace.
package scanner

import (
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
)

var sourceExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
	".vue": true,
}

// IsSourceFile reports whether name is a file the analysis service reads.
func IsSourceFile(name string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(name))]
}

// IgnoreDir reports whether the walk skips the directory at path: hidden
// directories and installed packages.
func IgnoreDir(path string) bool {
	base := filepath.Base(path)
	return base == "node_modules" || (len(base) > 1 && strings.HasPrefix(base, "."))
}

// Scan walks the subtree under root and returns the source files in it,
// sorted. skip, when not nil, drops further files.
func Scan(root string, skip func(path string, info fs.FileInfo) bool) []string {
	var files []string
	log.Printf("scanner: starting WalkDir at %q", root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Println("scanner: walk error:", err)
			return nil
		}
		if d.IsDir() {
			if path != root && IgnoreDir(path) {
				return fs.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) {
			return nil
		}
		if skip != nil {
			info, err := d.Info()
			if err != nil || skip(path, info) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		log.Println("scanner: WalkDir finished with error:", err)
	}
	sort.Strings(files)
	return files
}
