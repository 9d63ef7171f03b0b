package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMenuData(t *testing.T) {
	menus := ParseMenuData("File:Open,Save,Quit|Edit:Cut,Copy,Paste")
	require.Len(t, menus, 2)
	assert.Equal(t, "File", menus[0].Title)
	require.Len(t, menus[0].Items, 3)
	assert.Equal(t, "Save", menus[0].Items[1].Label)
	assert.True(t, menus[0].Items[1].Enabled)
	assert.Equal(t, "Edit", menus[1].Title)
	assert.Equal(t, "Paste", menus[1].Items[2].Label)
}

func TestParseMenuDataSloppyInput(t *testing.T) {
	menus := ParseMenuData(" File : Open , ,Quit ||NoColon|:NoTitle|Empty:")
	require.Len(t, menus, 1)
	assert.Equal(t, "File", menus[0].Title)
	require.Len(t, menus[0].Items, 2)
	assert.Equal(t, "Open", menus[0].Items[0].Label)
	assert.Equal(t, "Quit", menus[0].Items[1].Label)
}

func TestParseMenuDataEmpty(t *testing.T) {
	assert.Empty(t, ParseMenuData(""))
	assert.Empty(t, ParseMenuData("|||"))
}

func TestApplyMenuStates(t *testing.T) {
	menus := ParseMenuData("File:Open,Save|View:Hidden")
	ApplyMenuStates(menus, "File/Save:d|View/Hidden:c")

	assert.True(t, menus[0].Items[0].Enabled) // untouched
	assert.False(t, menus[0].Items[1].Enabled)
	assert.True(t, menus[1].Items[0].Checked)
	assert.True(t, menus[1].Items[0].Enabled)

	// Re-enabling works: empty flags clear both.
	ApplyMenuStates(menus, "File/Save:|View/Hidden:")
	assert.True(t, menus[0].Items[1].Enabled)
	assert.False(t, menus[1].Items[0].Checked)
}

func TestApplyMenuStatesUnknownTargets(t *testing.T) {
	menus := ParseMenuData("File:Open")
	// Unknown menu/item and malformed chunks must not panic or mutate.
	ApplyMenuStates(menus, "Nope/Thing:d|File/Missing:d|garbage|/x:d")
	assert.True(t, menus[0].Items[0].Enabled)
}
