package matching

import "strings"

// Keywords 把逗号分隔的技能串拆成去掉空白的关键词，保留原始大小写
func Keywords(skills string) []string {
	keywords := make([]string, 0)
	for _, s := range strings.Split(skills, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			keywords = append(keywords, s)
		}
	}
	return keywords
}

// skillSet 返回小写后的技能集合，用于大小写无关的查找
func skillSet(skills string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, k := range Keywords(skills) {
		set[strings.ToLower(k)] = struct{}{}
	}
	return set
}
