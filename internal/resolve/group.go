// SPDX-License-Identifier: MPL-2.0

package resolve

import "path/filepath"

// FolderGroup is the set of resolved files sharing one parent directory.
type FolderGroup struct {
	Dir   string
	Files []ResolvedFile
}

// Group partitions files by parent directory. Both the groups and the files
// within each group keep their first-seen order.
func Group(files []ResolvedFile) []FolderGroup {
	index := make(map[string]int)
	var groups []FolderGroup
	for _, f := range files {
		dir := filepath.Dir(string(f))
		i, ok := index[dir]
		if !ok {
			i = len(groups)
			index[dir] = i
			groups = append(groups, FolderGroup{Dir: dir})
		}
		groups[i].Files = append(groups[i].Files, f)
	}
	return groups
}

// Count returns the number of files across groups.
func Count(groups []FolderGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Files)
	}
	return n
}
