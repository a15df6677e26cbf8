package aur

import (
	"bufio"
	"bytes"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// ParseSrcinfo reads a .SRCINFO file. Values from the pkgbase section apply to
// every package; the pkgname section matching name adds its own. Architecture
// specific keys such as depends_x86_64 are merged into their base key.
func ParseSrcinfo(data []byte, name string) (domain.Package, error) {
	var (
		base    = map[string][]string{}
		own     = map[string][]string{}
		current map[string][]string
		seen    bool
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return domain.Package{}, zerr.With(zerr.With(domain.ErrMetadataParseFailed, "line", lineNo), "text", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "pkgbase":
			current = base
			seen = true
		case "pkgname":
			if value == name {
				current = own
			} else {
				current = nil
			}
			continue
		}
		if current == nil {
			if !seen {
				return domain.Package{}, zerr.With(domain.ErrMetadataParseFailed, "reason", "key before pkgbase")
			}
			continue
		}
		current[baseKey(key)] = append(current[baseKey(key)], value)
	}
	if err := sc.Err(); err != nil {
		return domain.Package{}, zerr.Wrap(err, domain.ErrMetadataParseFailed.Error())
	}
	if !seen {
		return domain.Package{}, zerr.With(domain.ErrMetadataParseFailed, "reason", "missing pkgbase")
	}

	get := func(key string) []string {
		if v, ok := own[key]; ok {
			return v
		}
		return base[key]
	}
	first := func(key string) string {
		if v := get(key); len(v) > 0 {
			return v[0]
		}
		return ""
	}

	version := first("pkgver")
	if rel := first("pkgrel"); rel != "" {
		version += "-" + rel
	}
	if epoch := first("epoch"); epoch != "" && epoch != "0" {
		version = epoch + ":" + version
	}

	return domain.Package{
		Name:         name,
		Version:      version,
		Description:  first("pkgdesc"),
		URL:          first("url"),
		Source:       domain.SourceThirdParty,
		Repository:   "aur",
		Licenses:     get("license"),
		Depends:      get("depends"),
		MakeDepends:  get("makedepends"),
		CheckDepends: get("checkdepends"),
		OptDepends:   get("optdepends"),
		Conflicts:    get("conflicts"),
		Provides:     get("provides"),
		Replaces:     get("replaces"),
		Backup:       get("backup"),
	}, nil
}

var archSuffixed = []string{"depends", "makedepends", "checkdepends", "optdepends", "conflicts", "provides", "replaces"}

func baseKey(key string) string {
	for _, k := range archSuffixed {
		if strings.HasPrefix(key, k+"_") {
			return k
		}
	}
	return key
}
