package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/livemeasure/schema"
)

// Color variables for console output.
var (
	RatingAColor = color.New(color.FgGreen, color.Bold) // best grade
	RatingBColor = color.New(color.FgGreen)
	RatingCColor = color.New(color.FgYellow)
	RatingDColor = color.New(color.FgMagenta, color.Bold)
	RatingEColor = color.New(color.FgRed, color.Bold) // worst grade

	PassColor = color.New(color.FgGreen, color.Bold)
	FailColor = color.New(color.FgRed, color.Bold)
	SkipColor = color.New(color.FgCyan)
)

var ratingColors = map[schema.Rating]*color.Color{
	schema.RatingA: RatingAColor,
	schema.RatingB: RatingBColor,
	schema.RatingC: RatingCColor,
	schema.RatingD: RatingDColor,
	schema.RatingE: RatingEColor,
}

// GetColorRating returns the rating letter colored by how good the grade is.
func GetColorRating(r schema.Rating) string {
	c, ok := ratingColors[r]
	if !ok {
		return r.String()
	}
	return c.Sprint(r.String())
}

// GetColorLevel returns a colored gate level for console output.
func GetColorLevel(level schema.GateLevel) string {
	switch level {
	case schema.GateOK:
		return PassColor.Sprint(string(level))
	case schema.GateError:
		return FailColor.Sprint(string(level))
	default:
		return SkipColor.Sprint(string(level))
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the component key matches any of the exclude patterns.
// Patterns with wildcard characters (*, ?, [ ]) use filepath.Match. Patterns ending
// with '/' are treated as prefixes. Anything else matches as a substring.
func ShouldIgnore(key string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, key); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(key)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(key, ex) {
				return true
			}
		case strings.Contains(key, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr so it never mixes with command output.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Info "+format+"\n", args...)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for measure storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".livemeasure.db"
	}
	return filepath.Join(homeDir, ".livemeasure.db")
}

// TruncateKey truncates a component key to a maximum width with ellipsis prefix.
// maxWidth must leave room for the "..." prefix and at least one character.
func TruncateKey(key string, maxWidth int) string {
	runes := []rune(key)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return key
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated list, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
