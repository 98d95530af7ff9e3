package domain

import "math"

// DuelRank is a titled band of points
type DuelRank struct {
	Low   int64  `json:"low"`
	High  int64  `json:"high"`
	Title string `json:"title"`
	Abbr  string `json:"abbr"`
	Color int    `json:"color"`
}

// DuelRanks covers the whole int64 range in ascending order
var DuelRanks = []DuelRank{
	{Low: math.MinInt64, High: 1300, Title: "Newbie", Abbr: "N", Color: 0x808080},
	{Low: 1300, High: 1400, Title: "Pupil", Abbr: "P", Color: 0x008000},
	{Low: 1400, High: 1500, Title: "Specialist", Abbr: "S", Color: 0x03a89e},
	{Low: 1500, High: 1600, Title: "Expert", Abbr: "E", Color: 0x0000ff},
	{Low: 1600, High: 1700, Title: "Candidate Master", Abbr: "CM", Color: 0xaa00aa},
	{Low: 1700, High: 1800, Title: "Master", Abbr: "M", Color: 0xff8c00},
	{Low: 1800, High: 1900, Title: "International Master", Abbr: "IM", Color: 0xf57500},
	{Low: 1900, High: 2000, Title: "Grandmaster", Abbr: "GM", Color: 0xff3030},
	{Low: 2000, High: 2100, Title: "International Grandmaster", Abbr: "IGM", Color: 0xff0000},
	{Low: 2100, High: math.MaxInt64, Title: "Legendary Grandmaster", Abbr: "LGM", Color: 0xcc0000},
}

// RankFor returns the band containing points
func RankFor(points int64) DuelRank {
	for _, r := range DuelRanks {
		if points >= r.Low && points < r.High {
			return r
		}
	}
	return DuelRanks[len(DuelRanks)-1]
}
