package util

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// ComicInfo is the subset of the ComicRack schema readers look at.
type ComicInfo struct {
	XMLName     xml.Name `xml:"ComicInfo"`
	Series      string   `xml:"Series,omitempty"`
	Number      string   `xml:"Number,omitempty"`
	Volume      string   `xml:"Volume,omitempty"`
	PageCount   int      `xml:"PageCount,omitempty"`
	LanguageISO string   `xml:"LanguageISO,omitempty"`
	Web         string   `xml:"Web,omitempty"`
}

// CreateCBZ zips files in name order into output. A non-nil info is
// stored as ComicInfo.xml. On any error, close errors included, the partial
// output is removed.
func CreateCBZ(files []string, output string, info *ComicInfo) (err error) {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cbz: %w", err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cbz %s: close: %w", output, cerr)
		}
		if err != nil {
			_ = os.Remove(output)
		}
	}()

	z := zip.NewWriter(out)
	if err := writeCBZ(z, files, info); err != nil {
		_ = z.Close()
		return fmt.Errorf("cbz %s: %w", output, err)
	}

	if err := z.Close(); err != nil {
		return fmt.Errorf("cbz %s: finish zip: %w", output, err)
	}

	return nil
}

func writeCBZ(z *zip.Writer, files []string, info *ComicInfo) error {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	for _, file := range sorted {
		if err := addFileToZip(z, file); err != nil {
			return err
		}
	}

	if info != nil {
		return addComicInfo(z, info)
	}

	return nil
}

func addComicInfo(z *zip.Writer, info *ComicInfo) error {
	data, err := xml.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	w, err := z.Create("ComicInfo.xml")
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	_, err = w.Write(data)

	return err
}

func addFileToZip(z *zip.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("error closing input file %s: %v", file, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(file)
	header.Method = zip.Deflate

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, f); err != nil {
		return err
	}

	return nil
}
