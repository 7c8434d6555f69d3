//
// Copyright (c) 2026 BCN3D Technologies
//

package pause

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type Method struct {
	Command     string // Pause instruction
	Description string
}

// Pause instructions by firmware
var (
	MethodMap = map[string]Method{
		"marlin":   {"M0", "Marlin (M0)"},
		"griffin":  {"M0", "Griffin (M0)"},
		"bq":       {"M25", "BQ (M25)"},
		"reprap":   {"M226", "RepRap (M226)"},
		"repetier": {"@pause", "Repetier (@pause)"},
		"prusa":    {"M601", "Prusa (M601)"},
	}

	defaultMethod = "marlin"
)

// MethodForFlavor picks the pause method for the flavor declared in
// the G-code header
func MethodForFlavor(flavor string) (name string) {
	flavor = strings.ToLower(flavor)

	switch {
	case strings.HasPrefix(flavor, "griffin"):
		name = "griffin"
	case strings.HasPrefix(flavor, "repetier"):
		name = "repetier"
	case flavor == "reprap (reprap)":
		name = "reprap"
	case strings.HasPrefix(flavor, "bfb"):
		name = "bq"
	default:
		name = defaultMethod
	}

	return
}

func PrintMethods(output io.Writer) {
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Known pause methods:")
	fmt.Fprintln(output)

	keys := []string{}
	for key := range MethodMap {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(output, "    %-20s %s\n", key, MethodMap[key].Description)
	}
}
