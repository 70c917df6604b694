package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/webstruct/models"
)

// minParagraphRunes is the exclusive lower bound on paragraph length.
const minParagraphRunes = 10

// ExtractContentBlocks segments doc into headings, paragraphs, lists, tables,
// forms, navigation regions and the first footer.
func ExtractContentBlocks(doc *goquery.Document) (models.ContentBlocks, error) {
	blocks := models.ContentBlocks{
		Headings:   []models.Heading{},
		Paragraphs: []models.Paragraph{},
		Lists:      []models.List{},
		Tables:     []models.Table{},
		Forms:      []models.Form{},
		Navigation: []models.Navigation{},
	}
	if doc == nil || len(doc.Nodes) == 0 {
		return blocks, ErrNilDocument
	}

	blocks.Headings = extractHeadings(doc)
	blocks.Paragraphs = extractParagraphs(doc)
	blocks.Lists = extractLists(doc)
	blocks.Tables = extractTables(doc)
	blocks.Forms = extractForms(doc)
	blocks.Navigation = extractNavigation(doc)
	blocks.Footer = extractFooter(doc)
	return blocks, nil
}

// extractHeadings walks the levels in ascending order, so every h1 precedes
// every h2 regardless of where they sit in the document.
func extractHeadings(doc *goquery.Document) []models.Heading {
	out := []models.Heading{}
	for level := 1; level <= 6; level++ {
		doc.Find("h" + strconv.Itoa(level)).Each(func(_ int, s *goquery.Selection) {
			out = append(out, models.Heading{
				Level:      level,
				Text:       trimmedText(s),
				ID:         s.AttrOr("id", ""),
				ClassNames: classNames(s),
			})
		})
	}
	return out
}

func extractParagraphs(doc *goquery.Document) []models.Paragraph {
	out := []models.Paragraph{}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := trimmedText(s)
		if utf8.RuneCountInString(text) <= minParagraphRunes {
			return
		}
		out = append(out, models.Paragraph{Text: text, ClassNames: classNames(s)})
	})
	return out
}

// extractLists includes every descendant <li>, nested lists included.
func extractLists(doc *goquery.Document) []models.List {
	out := []models.List{}
	doc.Find("ul, ol").Each(func(_ int, s *goquery.Selection) {
		kind := models.ListUnordered
		if goquery.NodeName(s) == "ol" {
			kind = models.ListOrdered
		}
		out = append(out, models.List{
			Kind:       kind,
			Items:      textsOf(s.Find("li")),
			ClassNames: classNames(s),
		})
	})
	return out
}

func extractTables(doc *goquery.Document) []models.Table {
	out := []models.Table{}
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		rows := [][]string{}
		t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			rows = append(rows, textsOf(tr.Find("td, th")))
		})
		out = append(out, models.Table{Rows: rows, ClassNames: classNames(t)})
	})
	return out
}

func extractForms(doc *goquery.Document) []models.Form {
	out := []models.Form{}
	doc.Find("form").Each(func(_ int, f *goquery.Selection) {
		inputs := []models.FormInput{}
		f.Find("input").Each(func(_ int, in *goquery.Selection) {
			inputs = append(inputs, models.FormInput{
				Type:        in.AttrOr("type", "text"),
				Name:        in.AttrOr("name", ""),
				Placeholder: in.AttrOr("placeholder", ""),
			})
		})
		out = append(out, models.Form{
			Action: f.AttrOr("action", ""),
			Method: f.AttrOr("method", "get"),
			Inputs: inputs,
		})
	})
	return out
}

func extractNavigation(doc *goquery.Document) []models.Navigation {
	out := []models.Navigation{}
	doc.Find("nav, header").Each(func(_ int, s *goquery.Selection) {
		out = append(out, models.Navigation{
			Links:      rawHrefs(s),
			ClassNames: classNames(s),
		})
	})
	return out
}

func extractFooter(doc *goquery.Document) *models.Footer {
	footer := doc.Find("footer").First()
	if footer.Length() == 0 {
		return nil
	}
	return &models.Footer{
		Text:  trimmedText(footer),
		Links: rawHrefs(footer),
	}
}

// rawHrefs returns the unresolved href of every anchor under s.
func rawHrefs(s *goquery.Selection) []string {
	out := []string{}
	s.FindMatcher(anchorMatcher).Each(func(_ int, a *goquery.Selection) {
		out = append(out, a.AttrOr("href", ""))
	})
	return out
}

func textsOf(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, item *goquery.Selection) {
		out = append(out, trimmedText(item))
	})
	return out
}

func classNames(s *goquery.Selection) []string {
	class, _ := s.Attr("class")
	names := strings.Fields(class)
	if names == nil {
		return []string{}
	}
	return names
}
