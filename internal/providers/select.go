package providers

import (
	"strconv"
	"strings"
)

// Filter selects chapters by 1-based index. chapter wins over rng, rng
// over list; with none set everything is returned.
func Filter(all []Chapter, chapter, rng, list string) []Chapter {
	if chapter != "" {
		if idx, err := strconv.Atoi(strings.TrimSpace(chapter)); err == nil {
			if idx > 0 && idx <= len(all) {
				return []Chapter{all[idx-1]}
			}
		}

		return nil
	}

	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all
}

func FilterRange(all []Chapter, rng string) []Chapter {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}

	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))

	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end || end > len(all) {
		return nil
	}

	return all[start-1 : end]
}

func FilterList(all []Chapter, list string) []Chapter {
	var out []Chapter
	parts := strings.SplitSeq(list, ",")

	for p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		idx, err := strconv.Atoi(p)
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}

		out = append(out, all[idx-1])
	}

	return out
}
