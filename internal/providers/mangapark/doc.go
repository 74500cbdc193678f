// Package mangapark extracts chapter listings and page images from
// mangapark.me by scanning the raw page text for fixed markers.
//
// Two extractors exist. MangaExtractor turns a manga index page into queued
// chapter URLs, oldest first. ChapterExtractor turns a chapter page, fetched
// with zoom=2 so every image carries its size, into chapter metadata and one
// record per page.
package mangapark
