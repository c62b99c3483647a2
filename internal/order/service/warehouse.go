package service

import "sort"

// OrderWarehouses orders the warehouses holding an item: codes on the
// priority list first, in list order, then the rest alphabetically.
// An empty set yields an empty slice; the caller must treat that as
// "no stock location" and never pick a warehouse silently.
func OrderWarehouses(set map[string]struct{}, priority []string) []string {
	if len(set) == 0 {
		return nil
	}

	out := make([]string, 0, len(set))
	onPriority := make(map[string]struct{}, len(priority))
	for _, wh := range priority {
		onPriority[wh] = struct{}{}
		if _, ok := set[wh]; ok {
			out = append(out, wh)
		}
	}

	var secondary []string
	for wh := range set {
		if _, ok := onPriority[wh]; !ok {
			secondary = append(secondary, wh)
		}
	}
	sort.Strings(secondary)

	return append(out, secondary...)
}
