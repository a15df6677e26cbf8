package pacman

import (
	"bufio"
	"bytes"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// field is one "Key : value" entry of pacman's info output.
type field struct {
	key   string
	lines []string
}

// parseInfo reads the block output of -Qi/-Qii/-Si. Blocks are separated by blank
// lines and continuation lines are indented.
func parseInfo(data []byte, source domain.Source) ([]domain.Package, error) {
	var (
		pkgs   []domain.Package
		fields []field
		lineNo int
	)

	flush := func() error {
		if len(fields) == 0 {
			return nil
		}
		pkg, err := buildPackage(fields, source)
		fields = nil
		if err != nil {
			return zerr.With(err, "line", lineNo)
		}
		pkgs = append(pkgs, pkg)
		return nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return pkgs, err
			}
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if len(fields) == 0 {
				return pkgs, zerr.With(domain.ErrMetadataParseFailed, "line", lineNo)
			}
			last := &fields[len(fields)-1]
			last.lines = append(last.lines, strings.TrimSpace(line))
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return pkgs, zerr.With(zerr.With(domain.ErrMetadataParseFailed, "line", lineNo), "text", line)
		}
		fields = append(fields, field{key: strings.TrimSpace(key), lines: []string{strings.TrimSpace(value)}})
	}
	if err := sc.Err(); err != nil {
		return pkgs, zerr.Wrap(err, domain.ErrMetadataParseFailed.Error())
	}
	if err := flush(); err != nil {
		return pkgs, err
	}
	return pkgs, nil
}

func buildPackage(fields []field, source domain.Source) (domain.Package, error) {
	pkg := domain.Package{Source: source}
	for _, f := range fields {
		switch f.key {
		case "Name":
			pkg.Name = f.lines[0]
		case "Version":
			pkg.Version = f.lines[0]
		case "Description":
			pkg.Description = noneToEmpty(f.lines[0])
		case "URL":
			pkg.URL = noneToEmpty(f.lines[0])
		case "Repository":
			pkg.Repository = f.lines[0]
		case "Packager":
			pkg.Maintainer = noneToEmpty(f.lines[0])
		case "Licenses":
			pkg.Licenses = splitList(f.lines[0])
		case "Depends On":
			pkg.Depends = splitList(f.lines[0])
		case "Optional Deps":
			pkg.OptDepends = lineList(f.lines)
		case "Conflicts With":
			pkg.Conflicts = splitList(f.lines[0])
		case "Provides":
			pkg.Provides = splitList(f.lines[0])
		case "Replaces":
			pkg.Replaces = splitList(f.lines[0])
		case "Backup Files":
			for _, l := range lineList(f.lines) {
				// "/etc/pacman.conf [modified]"
				path, _, _ := strings.Cut(l, " ")
				pkg.Backup = append(pkg.Backup, absolute(path))
			}
		}
	}
	if pkg.Name == "" || pkg.Version == "" {
		return pkg, zerr.With(domain.ErrMetadataParseFailed, "reason", "block without name or version")
	}
	return pkg, nil
}

// parseFileList reads "<pkg> <path>" lines from -Ql or -Fl and drops directories.
func parseFileList(data []byte) []string {
	var files []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		_, path, ok := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		if !ok || path == "" || strings.HasSuffix(path, "/") {
			continue
		}
		files = append(files, absolute(path))
	}
	return files
}

func splitList(s string) []string {
	if s == "" || s == "None" {
		return nil
	}
	return strings.Fields(s)
}

func lineList(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l == "" || l == "None" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func noneToEmpty(s string) string {
	if s == "None" {
		return ""
	}
	return s
}

// absolute makes sync database paths, which have no leading slash, comparable
// with local ones.
func absolute(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

