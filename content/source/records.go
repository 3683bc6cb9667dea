package source

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// textRenderer turns a field of the given format into HTML.
type textRenderer func(format, s string) (string, error)

func newTextRenderer(md MarkdownRenderer) textRenderer {
	return func(format, s string) (string, error) {
		switch format {
		case "", formatHTML:
			return s, nil
		case formatMarkdown:
			return md.Render(s)
		default:
			return "", fmt.Errorf("unknown body format %q", format)
		}
	}
}

type articleRecord struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Body             string    `json:"body"`
	BodyFormat       string    `json:"bodyFormat"`
	Thumbnail        string    `json:"thumbnail"`
	Tags             []string  `json:"tags"`
	ShowOnHomeScreen bool      `json:"showOnHomeScreen"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

func decodeArticle(render textRenderer) func([]byte) (domain.Article, error) {
	return func(data []byte) (domain.Article, error) {
		var rec articleRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return domain.Article{}, err
		}
		body, err := render(rec.BodyFormat, rec.Body)
		if err != nil {
			return domain.Article{}, err
		}
		return domain.Article{
			ID:               rec.ID,
			Title:            rec.Title,
			Summary:          rec.Summary,
			Body:             body,
			Thumbnail:        rec.Thumbnail,
			TagIDs:           rec.Tags,
			ShowOnHomeScreen: rec.ShowOnHomeScreen,
			LastUpdated:      rec.LastUpdated.UTC(),
		}, nil
	}
}

type algorithmRecord struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Summary          string          `json:"summary"`
	Body             string          `json:"body"`
	BodyFormat       string          `json:"bodyFormat"`
	Thumbnail        string          `json:"thumbnail"`
	Type             string          `json:"type"`
	Switches         []switchRecord  `json:"switches"`
	Outcomes         []outcomeRecord `json:"outcomes"`
	ShowOnHomeScreen bool            `json:"showOnHomeScreen"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

type switchRecord struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

type outcomeRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Threshold int    `json:"threshold"`
}

func decodeAlgorithm(render textRenderer) func([]byte) (domain.Algorithm, error) {
	return func(data []byte) (domain.Algorithm, error) {
		var rec algorithmRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return domain.Algorithm{}, err
		}

		body, err := render(rec.BodyFormat, rec.Body)
		if err != nil {
			return domain.Algorithm{}, err
		}

		var outcomes []domain.Outcome
		for _, o := range rec.Outcomes {
			html, err := render(rec.BodyFormat, o.Body)
			if err != nil {
				return domain.Algorithm{}, fmt.Errorf("outcome %s: %w", o.ID, err)
			}
			outcomes = append(outcomes, domain.Outcome{ID: o.ID, Title: o.Title, Body: html, Threshold: o.Threshold})
		}

		var info domain.AlgorithmInfo
		switch domain.AlgorithmKind(rec.Type) {
		case "", domain.AlgorithmKindTextual:
			info = domain.TextualInfo{}
		case domain.AlgorithmKindScored:
			var switches []domain.Switch
			for _, s := range rec.Switches {
				html, err := render(rec.BodyFormat, s.Description)
				if err != nil {
					return domain.Algorithm{}, fmt.Errorf("switch %s: %w", s.ID, err)
				}
				switches = append(switches, domain.Switch{ID: s.ID, Label: s.Label, Description: html, Weight: s.Weight})
			}
			info = domain.ScoredInfo{Switches: switches}
		default:
			return domain.Algorithm{}, fmt.Errorf("unknown algorithm type %q", rec.Type)
		}

		return domain.Algorithm{
			ID:               rec.ID,
			Title:            rec.Title,
			Summary:          rec.Summary,
			Body:             body,
			Thumbnail:        rec.Thumbnail,
			Outcomes:         outcomes,
			ShowOnHomeScreen: rec.ShowOnHomeScreen,
			LastUpdated:      rec.LastUpdated.UTC(),
			Info:             info,
		}, nil
	}
}

type tagRecord struct {
	ID          string    `json:"id"`
	Designation string    `json:"designation"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func decodeTag(data []byte) (domain.Tag, error) {
	var rec tagRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Tag{}, err
	}
	return domain.Tag{
		ID:          rec.ID,
		Designation: rec.Designation,
		Description: rec.Description,
		LastUpdated: rec.LastUpdated.UTC(),
	}, nil
}

type introSequenceRecord struct {
	ID         string `json:"id"`
	BodyFormat string `json:"bodyFormat"`
	Items      []struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"items"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func decodeIntroSequence(render textRenderer) func([]byte) (domain.IntroSequence, error) {
	return func(data []byte) (domain.IntroSequence, error) {
		var rec introSequenceRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return domain.IntroSequence{}, err
		}

		seq := domain.IntroSequence{ID: rec.ID, LastUpdated: rec.LastUpdated.UTC()}
		for i, item := range rec.Items {
			body, err := render(rec.BodyFormat, item.Body)
			if err != nil {
				return domain.IntroSequence{}, fmt.Errorf("item %d: %w", i, err)
			}
			seq.Items = append(seq.Items, domain.IntroItem{Title: item.Title, Body: body})
		}
		return seq, nil
	}
}
