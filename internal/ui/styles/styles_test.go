// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTheme_Variants(t *testing.T) {
	dark := NewTheme("dark")
	require.NotNil(t, dark)
	assert.Equal(t, ThemeDark, dark.Name)
	assert.True(t, dark.IsDark)

	light := NewTheme(" Light ")
	assert.Equal(t, ThemeLight, light.Name)
	assert.False(t, light.IsDark)

	unknown := NewTheme("solarized")
	assert.Equal(t, ThemeDark, unknown.Name)
}

func TestNewTheme_StylesRender(t *testing.T) {
	theme := NewTheme(ThemeDark)
	for name, rendered := range map[string]string{
		"header":    theme.Header.Render("receipta"),
		"status":    theme.StatusBar.Render("ready"),
		"protected": theme.RouteProtected.Render("protected"),
		"public":    theme.RoutePublic.Render("public"),
		"watching":  theme.GuardWatching.Render("watching"),
	} {
		assert.NotEmpty(t, rendered, name)
	}
}

func TestTheme_LayoutMode(t *testing.T) {
	theme := NewTheme(ThemeDark)

	theme.SetSize(40, 20)
	assert.Equal(t, LayoutNarrow, theme.LayoutMode())

	theme.SetSize(80, 24)
	assert.Equal(t, LayoutMedium, theme.LayoutMode())

	theme.SetSize(100, 40)
	assert.Equal(t, LayoutWide, theme.LayoutMode())
	assert.Equal(t, 40, theme.Height)
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	assert.True(t, strings.Contains(RenderSuccess("saved"), StatusIndicators.Success))
	assert.True(t, strings.Contains(RenderError("failed"), StatusIndicators.Error))
	assert.True(t, strings.Contains(RenderWarning("careful"), StatusIndicators.Warning))
	assert.True(t, strings.Contains(RenderInfo("note"), StatusIndicators.Info))
	assert.Contains(t, RenderError("failed"), "failed")
}
