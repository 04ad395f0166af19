package codes

import (
	"sort"
	"strings"

	"github.com/barretodotcom/inmocrm/db"
)

// DuplicateGroup is a code carried by more than one active property.
// Keep is the newest row; Remove holds the rest, newest first.
type DuplicateGroup struct {
	Code   string        `json:"code"`
	Keep   db.Property   `json:"keep"`
	Remove []db.Property `json:"remove"`
}

// Duplicates groups active, coded properties by code and returns the groups
// with more than one member, ordered by code. Ties on created_at keep the
// higher id.
func Duplicates(props []db.Property) []DuplicateGroup {
	byCode := map[string][]db.Property{}
	for _, p := range props {
		if p.DeletedAt != nil || p.Code == nil {
			continue
		}
		code := strings.TrimSpace(*p.Code)
		if code == "" {
			continue
		}
		byCode[code] = append(byCode[code], p)
	}

	var out []DuplicateGroup
	for code, group := range byCode {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.After(group[j].CreatedAt)
			}
			return group[i].ID > group[j].ID
		})
		out = append(out, DuplicateGroup{Code: code, Keep: group[0], Remove: group[1:]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
