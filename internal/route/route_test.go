// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_PublicAllowList(t *testing.T) {
	for _, p := range DefaultPublicPaths {
		assert.Equal(t, Public, Classify(p), "path %q", p)
	}
}

func TestClassify_EverythingElseIsProtected(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"dashboard", "/dashboard"},
		{"receipts", "/receipts"},
		{"nested under public", "/login/extra"},
		{"trailing slash", "/login/"},
		{"case variant", "/LOGIN"},
		{"callback prefix", "/auth"},
		{"query string", "/login?next=/dashboard"},
		{"empty", ""},
		{"no leading slash", "login"},
		{"whitespace", " /login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Protected, Classify(tt.path))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Public, Classify("/register"))
		assert.Equal(t, Protected, Classify("/draws"))
	}
}

func TestNewClassifier_CustomPaths(t *testing.T) {
	c := NewClassifier("/welcome", "/login", "/welcome")

	assert.Equal(t, Public, c.Classify("/welcome"))
	assert.Equal(t, Public, c.Classify("/login"))
	assert.Equal(t, Protected, c.Classify("/"))
	assert.Equal(t, []string{"/welcome", "/login"}, c.PublicPaths())
}

func TestNewClassifier_DefaultsWhenEmpty(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, DefaultPublicPaths, c.PublicPaths())
	assert.True(t, c.IsPublic("/auth/callback"))
	assert.False(t, c.IsPublic("/profile"))
}

func TestPublicPaths_ReturnsCopy(t *testing.T) {
	c := NewClassifier()
	paths := c.PublicPaths()
	paths[0] = "/mutated"

	assert.Equal(t, Public, c.Classify("/"))
	assert.Equal(t, "/", c.PublicPaths()[0])
}

func TestClassification_String(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "protected", Protected.String())
	assert.Equal(t, "unknown", Classification(42).String())
	assert.Equal(t, Protected, Classification(0))
}
