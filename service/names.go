package service

import (
	"fmt"
	"path/filepath"
	"strings"
)

func compressedName(original string) string {
	return "compressed_" + filepath.Base(original)
}

func partName(original string, n int) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "document"
	}
	return fmt.Sprintf("%s_part%d.pdf", base, n)
}
