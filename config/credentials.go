// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadCredentials reads a credentials file holding the database URI,
// user name and password on its first three lines.
func LoadCredentials(path string) (Neo4j, error) {
	f, err := os.Open(path)
	if err != nil {
		return Neo4j{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for len(lines) < 3 && sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return Neo4j{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if len(lines) < 3 {
		return Neo4j{}, fmt.Errorf("config: %s: want URI, user and password lines, got %d lines", path, len(lines))
	}
	return Neo4j{URI: lines[0], User: lines[1], Password: lines[2]}, nil
}
