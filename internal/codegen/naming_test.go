package codegen

import "testing"

func TestClassName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"users", "Users"},
		{"order_items", "OrderItems"},
		{"user_account_settings", "UserAccountSettings"},
		{"posts", "Posts"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			if got := ClassName(tt.table); got != tt.want {
				t.Errorf("ClassName(%q) = %q, want %q", tt.table, got, tt.want)
			}
		})
	}
}

func TestTableVarName(t *testing.T) {
	if got := TableVarName("users"); got != "t_users" {
		t.Errorf("TableVarName(users) = %q, want t_users", got)
	}
}
