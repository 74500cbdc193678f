package mangapark

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ChapterTitles maps each chapter href inside the book list to its link
// text. Keys are entity-decoded hrefs. It is used for display only; a page
// goquery cannot parse yields nil.
func ChapterTitles(page string) map[string]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	out := map[string]string{}
	doc.Find("div#list.book-list a.ch").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if _, seen := out[href]; seen {
			return
		}

		out[href] = strings.Join(strings.Fields(a.Text()), " ")
	})

	return out
}
