package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadCharacterOrder reads the user's character ordering file. Line N (1-based)
// pins that character name to cycling position N. Blank lines and lines
// starting with '#' are skipped. A missing file is not an error: it returns
// nil and cycling falls back to detection order.
func LoadCharacterOrder() ([]string, error) {
	path := CharacterOrderPath()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return names, nil
}

// CharacterOrderPath returns the path of the character ordering file, next to
// the config file.
func CharacterOrderPath() string {
	return filepath.Join(filepath.Dir(GetConfigPath()), "characters.txt")
}
