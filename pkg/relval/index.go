package relval

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// IndexFile is the name of generated gallery pages.
	IndexFile = "index.html"

	// captionedDir holds images named <prefix>-<path>-<filter>.<ext> which
	// get a caption.
	captionedDir = "EGTagAndProbe"

	defaultFilePerm = 0o644
)

var (
	dirIndex = template.Must(template.New("dir").Parse(`{{range .}}{{if .Caption}}{{.Caption}} <br>
{{end}}<a href="{{.Name}}"><img class="image" width="1000" src="{{.Name}}"></a><br><br>
{{end}}`))

	topIndex = template.Must(template.New("top").Parse(`{{range .}}<a href="{{.}}">{{.}}</a><br>
{{end}}`))
)

type image struct {
	Name    string
	Caption string
}

// WriteIndexes writes an index page into every subdirectory of dir linking
// its images with the ext extension, and a top index page linking the
// subdirectories.
func WriteIndexes(dir, ext string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read gallery directory: %w", err)
	}

	var subdirs []string

	for i := range entries {
		if !entries[i].IsDir() {
			continue
		}

		name := entries[i].Name()

		err = writeDirIndex(filepath.Join(dir, name), ext, name == captionedDir)
		if err != nil {
			return err
		}

		subdirs = append(subdirs, name)
	}

	return writeIndex(filepath.Join(dir, IndexFile), topIndex, subdirs)
}

func writeDirIndex(dir, ext string, captioned bool) error {
	names, err := Images(dir, ext)
	if err != nil {
		return err
	}

	images := make([]image, len(names))

	for i := range names {
		images[i].Name = names[i]
		if captioned {
			images[i].Caption = Caption(names[i])
		}
	}

	return writeIndex(filepath.Join(dir, IndexFile), dirIndex, images)
}

func writeIndex(path string, t *template.Template, data any) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	err = t.Execute(f, data)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// Images returns sorted names of regular files with the ext extension
// in dir.
func Images(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var res []string

	for i := range entries {
		if entries[i].Type().IsRegular() && filepath.Ext(entries[i].Name()) == ext {
			res = append(res, entries[i].Name())
		}
	}

	sort.Strings(res)

	return res, nil
}

// Caption describes a tag-and-probe image named <prefix>-<path>-<filter>.<ext>.
// Names of another shape have no caption.
func Caption(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) < 3 {
		return ""
	}

	filter, _, _ := strings.Cut(parts[2], ".")

	return "Path: " + parts[1] + " Filter: " + filter
}
