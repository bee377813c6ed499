package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

const (
	sectionAnnotation = "section"
	generalSection    = "General Options"
)

// helpSection is one titled block of flags in the help output.
type helpSection struct {
	title string
	flags []*pflag.Flag
}

func cliUsage() { writeUsage(os.Stderr, pflag.CommandLine) }

// writeUsage prints the flags of set grouped by section, in the order each
// section is first seen. Flag names, usage text and defaults line up in
// columns across all sections.
func writeUsage(w io.Writer, set *pflag.FlagSet) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "%s: inspect and exercise a DRM device through gbm\n\n",
		colorText(hiYellow, name))
	fmt.Fprintf(w, "usage: %s [flags]\n", name)

	sections := collectSections(set)

	var nameWidth, usageWidth int
	for _, section := range sections {
		for _, f := range section.flags {
			nameWidth = max(nameWidth, len(flagSignature(f)))
			usageWidth = max(usageWidth, len(f.Usage))
		}
	}

	for _, section := range sections {
		fmt.Fprintf(w, "\n%s\n", colorText(hiYellow, section.title))
		for _, f := range section.flags {
			signature := flagSignature(f)
			fmt.Fprintf(w, "  %s%s  %s%s  %s\n",
				colorText(cyan, signature),
				strings.Repeat(" ", nameWidth-len(signature)),
				colorText(green, f.Usage),
				strings.Repeat(" ", usageWidth-len(f.Usage)),
				colorText(darkPurple, "["+defaultText(f)+"]"))
		}
	}
}

func collectSections(set *pflag.FlagSet) []helpSection {
	var sections []helpSection
	index := make(map[string]int)

	set.VisitAll(func(f *pflag.Flag) {
		title := generalSection
		if values := f.Annotations[sectionAnnotation]; len(values) > 0 {
			title = values[0]
		}

		i, ok := index[title]
		if !ok {
			i = len(sections)
			index[title] = i
			sections = append(sections, helpSection{title: title})
		}
		sections[i].flags = append(sections[i].flags, f)
	})
	return sections
}

// flagSignature renders "-d, --device string" or "    --dry-run".
func flagSignature(f *pflag.Flag) string {
	short := "    "
	if f.Shorthand != "" {
		short = "-" + f.Shorthand + ", "
	}

	signature := short + "--" + f.Name
	if typ := f.Value.Type(); typ != "bool" {
		signature += " " + typ
	}
	return signature
}

func defaultText(f *pflag.Flag) string {
	if f.DefValue == "" {
		return `""`
	}
	return f.DefValue
}

// addFlagToHelpGroup files an already defined flag under a help section.
func addFlagToHelpGroup(flagName string, section string) {
	if err := pflag.CommandLine.SetAnnotation(flagName, sectionAnnotation,
		[]string{section}); err != nil {
		panic(err)
	}
}

type color string

const (
	cyan       color = "\033[96m"
	darkPurple color = "\033[38;5;55m"
	hiYellow   color = "\033[93m"
	green      color = "\033[92m"
)

const reset = "\033[0m"

func colorText(c color, text string) string { return string(c) + text + reset }
