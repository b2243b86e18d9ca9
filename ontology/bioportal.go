// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kortschak/spoke/config"
)

// Annotation is a recommender match of an input term to an ontology
// class.
type Annotation struct {
	// Text is the matched input text.
	Text string
	// Class is the IRI of the annotated class.
	Class string
}

// Recommender returns ontology annotations for a set of terms.
type Recommender interface {
	Recommend(ctx context.Context, terms []string, ontology string) ([]Annotation, error)
}

// StatusError is returned when the recommender responds with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ontology: recommender request failed: %s", e.Status)
	}
	return fmt.Sprintf("ontology: recommender request failed: %s: %s", e.Status, e.Body)
}

// BioPortal is a Recommender using the BioPortal recommender API.
type BioPortal struct {
	url    string
	apiKey string
	client *http.Client
	log    *zap.Logger
}

// NewBioPortal returns a BioPortal recommender client. If log is nil
// no logging is performed.
func NewBioPortal(cfg config.BioPortal, log *zap.Logger) *BioPortal {
	if log == nil {
		log = zap.NewNop()
	}
	url := cfg.URL
	if url == "" {
		url = config.BioPortalURL
	}
	return &BioPortal{
		url:    url,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout)},
		log:    log,
	}
}

type recommendRequest struct {
	Input      string `json:"input"`
	InputType  string `json:"input_type"`
	Ontologies string `json:"ontologies"`
}

type recommendation struct {
	CoverageResult struct {
		Annotations []struct {
			Text           string `json:"text"`
			AnnotatedClass struct {
				ID string `json:"@id"`
			} `json:"annotatedClass"`
		} `json:"annotations"`
	} `json:"coverageResult"`
}

// maxErrorBody is the maximum number of bytes of an error response
// body retained in a StatusError.
const maxErrorBody = 512

// Recommend returns the annotations of the highest ranked recommendation
// for the terms in the named ontology. Failed requests are logged and
// returned as errors. The request is not retried.
func (b *BioPortal) Recommend(ctx context.Context, terms []string, ontology string) ([]Annotation, error) {
	body, err := json.Marshal(recommendRequest{
		Input:      strings.Join(terms, ","),
		InputType:  "2", // Comma separated keywords.
		Ontologies: ontology,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "apikey token="+b.apiKey)

	b.log.Debug("recommender request", zap.String("ontology", ontology), zap.Int("terms", len(terms)))
	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Error("recommender request failed", zap.String("url", b.url), zap.Error(err))
		return nil, fmt.Errorf("ontology: recommender request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(msg)),
		}
		b.log.Error("recommender request failed", zap.String("url", b.url), zap.Error(err))
		return nil, err
	}

	var recs []recommendation
	err = json.NewDecoder(resp.Body).Decode(&recs)
	if err != nil {
		b.log.Error("invalid recommender response", zap.Error(err))
		return nil, fmt.Errorf("ontology: invalid recommender response: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	anns := make([]Annotation, 0, len(recs[0].CoverageResult.Annotations))
	for _, a := range recs[0].CoverageResult.Annotations {
		anns = append(anns, Annotation{Text: a.Text, Class: a.AnnotatedClass.ID})
	}
	return anns, nil
}
