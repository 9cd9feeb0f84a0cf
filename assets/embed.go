package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed patterns.txt decoys.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// PatternLines returns the raw catalog records, one pattern per line:
//
//	class|tier|id|weight|rhythm|culture|word,word,word
func PatternLines() ([]string, error) {
	return readLines("patterns.txt")
}

// DecoyLines returns the curated content-word decoy pool, one word per line.
func DecoyLines() ([]string, error) {
	return readLines("decoys.txt")
}
