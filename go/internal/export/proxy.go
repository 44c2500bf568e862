package export

import (
	"time"

	"github.com/mcdev12/cubedraft/go/internal/models"
)

// Letter page and card dimensions in millimetres.
const (
	CardWidthMM  = 63.0
	CardHeightMM = 88.0
	PageWidthMM  = 216.0
	PageHeightMM = 279.0
	MarginMM     = 10.0

	CardsPerRow  = 3
	CardsPerCol  = 3
	CardsPerPage = CardsPerRow * CardsPerCol
)

// Slot is one card position on a page. Placeholder slots carry the card
// text to print when the image is unavailable.
type Slot struct {
	Card        models.Card `json:"card"`
	ImageURL    string      `json:"image_url,omitempty"`
	Placeholder bool        `json:"placeholder"`
	X           float64     `json:"x_mm"`
	Y           float64     `json:"y_mm"`
	Width       float64     `json:"width_mm"`
	Height      float64     `json:"height_mm"`
}

// Page is one printed sheet.
type Page struct {
	Number int    `json:"number"`
	Slots  []Slot `json:"slots"`
}

// Sheet is the full proxy print plan.
type Sheet struct {
	FileName string     `json:"file_name"`
	PageSize [2]float64 `json:"page_size_mm"`
	Pages    []Page     `json:"pages"`
}

// ProxyFileName names the printable file for a day.
func ProxyFileName(day time.Time) string {
	return "mtg-draft-proxies-" + day.Format("2006-01-02") + ".pdf"
}

// ProxySheet lays cards out nine to a page in a 3x3 grid spread evenly
// between the margins.
func ProxySheet(cards []models.Card, day time.Time) Sheet {
	sheet := Sheet{
		FileName: ProxyFileName(day),
		PageSize: [2]float64{PageWidthMM, PageHeightMM},
		Pages:    []Page{},
	}

	spacingX := (PageWidthMM - 2*MarginMM - CardsPerRow*CardWidthMM) / (CardsPerRow - 1)
	spacingY := (PageHeightMM - 2*MarginMM - CardsPerCol*CardHeightMM) / (CardsPerCol - 1)

	for start := 0; start < len(cards); start += CardsPerPage {
		end := min(start+CardsPerPage, len(cards))
		page := Page{Number: len(sheet.Pages) + 1}
		for i, card := range cards[start:end] {
			row, col := i/CardsPerRow, i%CardsPerRow
			slot := Slot{
				Card:   card,
				X:      MarginMM + float64(col)*(CardWidthMM+spacingX),
				Y:      MarginMM + float64(row)*(CardHeightMM+spacingY),
				Width:  CardWidthMM,
				Height: CardHeightMM,
			}
			if url := card.ImageURL(models.ImageSizeNormal); url != "" {
				slot.ImageURL = url
			} else {
				slot.Placeholder = true
			}
			page.Slots = append(page.Slots, slot)
		}
		sheet.Pages = append(sheet.Pages, page)
	}
	return sheet
}
