package models

// DollBasePrice is the base commission price before addons, in currency units.
const DollBasePrice = 700

// DollAddons is the fixed doll-order addon catalog. Selected entries are
// snapshotted into the order at submission time.
var DollAddons = []Addon{
	{ID: "a5-pouch-1", Name: "A5活頁收納袋一格", Price: 8},
	{ID: "a5-pouch-2", Name: "A5活頁收納袋兩格", Price: 8},
	{ID: "sticker-paper", Name: "保護膜標籤紙20個", Price: 4},
	{ID: "glue-30ml", Name: "30ml保麗龍膠", Price: 13},
	{ID: "stand-bag-black", Name: "基礎款立牌包黑色", Price: 75},
	{ID: "stand-bag-white", Name: "基礎款立牌包白色", Price: 75},
	{ID: "stand-bag-red", Name: "基礎款立牌包紅色", Price: 75},
	{ID: "stand-bag-pink", Name: "基礎款立牌包粉色", Price: 75},
	{ID: "stand-bag-orange", Name: "基礎款立牌包橘色", Price: 75},
	{ID: "stand-bag-yellow", Name: "基礎款立牌包黃色", Price: 75},
	{ID: "stand-bag-green", Name: "基礎款立牌包綠色", Price: 75},
	{ID: "stand-bag-blue", Name: "基礎款立牌包藍色", Price: 75},
	{ID: "stand-bag-purple", Name: "基礎款立牌包紫色", Price: 75},
}

// FindAddon looks up a catalog addon by id.
func FindAddon(id string) (Addon, bool) {
	for _, a := range DollAddons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

// SelectAddons snapshots the catalog entries matching the given ids,
// preserving catalog order. Unknown ids are skipped.
func SelectAddons(ids []string) AddonList {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	selected := make(AddonList, 0, len(ids))
	for _, a := range DollAddons {
		if wanted[a.ID] {
			selected = append(selected, a)
		}
	}
	return selected
}

// AddonTotal sums the prices of the snapshotted addons.
func AddonTotal(addons AddonList) int {
	total := 0
	for _, a := range addons {
		total += a.Price
	}
	return total
}
