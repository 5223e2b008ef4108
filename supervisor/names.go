package supervisor

import (
	"fmt"
	"strings"
)

// ManualBaseName - основа имени для кривых ручного режима.
const ManualBaseName = "Prueba_Manual"

// UniqueName предлагает имя вида <base>_<n>, которого нет среди existing.
func UniqueName(base string, existing []string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "-" {
		base = ManualBaseName
	}
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
