package timeparse

import (
	"sort"
	"strconv"
	"strings"
)

// spelledNumbers is the closed numeral vocabulary 0-60, including the
// irregular 两 for 2. Compound tens (二十一..二十九) are listed explicitly so
// normalization stays a plain substitution.
var spelledNumbers = map[string]int{
	"零": 0, "一": 1, "二": 2, "两": 2, "三": 3, "四": 4,
	"五": 5, "六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
	"十一": 11, "十二": 12, "十三": 13, "十四": 14, "十五": 15,
	"十六": 16, "十七": 17, "十八": 18, "十九": 19,
	"二十": 20, "二十一": 21, "二十二": 22, "二十三": 23, "二十四": 24,
	"二十五": 25, "二十六": 26, "二十七": 27, "二十八": 28, "二十九": 29,
	"三十": 30, "四十": 40, "五十": 50, "六十": 60,
}

// numeralOrder holds the numeral keys longest-first, so 二十二 is tried before
// 二十 and 二十 before 二. Built once at resolver construction.
func numeralOrder() []string {
	keys := make([]string, 0, len(spelledNumbers))
	for k := range spelledNumbers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// normalizeNumerals substitutes every spelled-out numeral with its digit form.
func (r *Resolver) normalizeNumerals(input string) string {
	out := input
	for _, k := range r.numerals {
		out = strings.ReplaceAll(out, k, strconv.Itoa(spelledNumbers[k]))
	}
	return out
}
