package extract

import "sort"

// GroupItems는 WorkItem을 warc_filename별로 묶습니다.
// 그룹 순서는 입력에서 처음 나온 순서를 따르고, 그룹 안은 offset 오름차순으로 정렬합니다.
// 같은 (warc_filename, offset)이 다시 나오면 버리고 그 수를 반환합니다.
func GroupItems(items []WorkItem) (groups []FileGroup, duplicates int) {
	index := make(map[string]int)
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if _, dup := seen[item.Key()]; dup {
			duplicates++
			continue
		}
		seen[item.Key()] = struct{}{}

		gi, ok := index[item.WarcFilename]
		if !ok {
			gi = len(groups)
			index[item.WarcFilename] = gi
			groups = append(groups, FileGroup{WarcFilename: item.WarcFilename})
		}
		g := &groups[gi]
		if g.SourceURL == "" {
			g.SourceURL = item.SourceURL
		}
		g.Items = append(g.Items, item)
	}

	for i := range groups {
		items := groups[i].Items
		sort.SliceStable(items, func(a, b int) bool { return items[a].Offset < items[b].Offset })
	}
	return groups, duplicates
}
