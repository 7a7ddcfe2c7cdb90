package store

import (
	"reflect"
	"testing"
)

func TestMemberSet(t *testing.T) {
	tests := []struct {
		name      string
		createdBy string
		members   []string
		expected  []string
	}{
		{
			name:      "creator plus invitees",
			createdBy: "uid-a",
			members:   []string{"uid-b", "uid-c"},
			expected:  []string{"uid-a", "uid-b", "uid-c"},
		},
		{
			name:      "creator also selected",
			createdBy: "uid-a",
			members:   []string{"uid-a", "uid-b"},
			expected:  []string{"uid-a", "uid-b"},
		},
		{
			name:      "duplicate invitees",
			createdBy: "uid-a",
			members:   []string{"uid-b", "uid-b"},
			expected:  []string{"uid-a", "uid-b"},
		},
		{
			name:      "no invitees",
			createdBy: "uid-a",
			members:   nil,
			expected:  []string{"uid-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := memberSet(tt.createdBy, tt.members)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("memberSet(%q, %v) = %v; want %v", tt.createdBy, tt.members, got, tt.expected)
			}
		})
	}
}
