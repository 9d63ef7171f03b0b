package menu

// appmenu.go parses the client-provided menu registration properties.
// _AMIWB_MENU_DATA is pipe-and-comma delimited: "Menu:Item1,Item2|…".
// _AMIWB_MENU_STATES updates enable/check flags for registered items:
// "Menu/Item:flags" pairs, also pipe delimited, where flags contains 'd'
// for disabled and 'c' for checked.

import "strings"

// ParseMenuData decodes the registration format into menus with every
// item enabled and unchecked.
func ParseMenuData(data string) []Menu {
	var menus []Menu
	for _, chunk := range strings.Split(data, "|") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		colon := strings.IndexByte(chunk, ':')
		if colon <= 0 {
			continue
		}
		m := Menu{Title: strings.TrimSpace(chunk[:colon])}
		for _, item := range strings.Split(chunk[colon+1:], ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			m.Items = append(m.Items, Item{Label: item, Enabled: true})
		}
		if len(m.Items) > 0 {
			menus = append(menus, m)
		}
	}
	return menus
}

// ApplyMenuStates mutates menus in place from a states string.
func ApplyMenuStates(menus []Menu, data string) {
	for _, chunk := range strings.Split(data, "|") {
		chunk = strings.TrimSpace(chunk)
		colon := strings.LastIndexByte(chunk, ':')
		if colon <= 0 {
			continue
		}
		path := chunk[:colon]
		flags := chunk[colon+1:]
		slash := strings.IndexByte(path, '/')
		if slash <= 0 {
			continue
		}
		menuName := path[:slash]
		itemName := path[slash+1:]

		for mi := range menus {
			if menus[mi].Title != menuName {
				continue
			}
			for ii := range menus[mi].Items {
				if menus[mi].Items[ii].Label != itemName {
					continue
				}
				menus[mi].Items[ii].Enabled = !strings.ContainsRune(flags, 'd')
				menus[mi].Items[ii].Checked = strings.ContainsRune(flags, 'c')
			}
		}
	}
}
