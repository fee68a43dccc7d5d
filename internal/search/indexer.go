// internal/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/generation/request"
	"contractgen-workers/internal/models"
)

// document is the searchable projection of one generation. The full artifact
// body is indexed so operators can search for function names and clauses.
type document struct {
	OrganizationType   string    `json:"organizationType"`
	TransactionPattern string    `json:"transactionPattern"`
	ArtifactCategory   string    `json:"artifactCategory"`
	Artifact           string    `json:"artifact"`
	Analysis           string    `json:"analysis"`
	Severities         []string  `json:"severities,omitempty"`
	FindingCount       int       `json:"findingCount"`
	Degraded           bool      `json:"degraded"`
	FromCache          bool      `json:"fromCache"`
	IndexedAt          time.Time `json:"indexedAt"`
}

// Indexer pushes completed generations into Elasticsearch. Like every other
// sink it is best effort: indexing failures are logged and dropped.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
	now    func() time.Time
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = "generated-contracts"
	}
	return &Indexer{client: client, index: index, log: log, now: time.Now}
}

// Record indexes one completed generation.
func (i *Indexer) Record(ctx context.Context, req *request.GenerationRequest, result *models.GenerationResult) {
	doc := document{
		OrganizationType:   req.OrganizationType,
		TransactionPattern: req.TransactionPattern,
		ArtifactCategory:   req.ArtifactCategory,
		Artifact:           result.ArtifactText,
		Analysis:           result.AnalysisText,
		FindingCount:       len(result.Findings),
		Degraded:           result.FullyDegraded(),
		FromCache:          result.FromCache,
		IndexedAt:          i.now().UTC(),
	}
	for _, f := range result.Findings {
		doc.Severities = append(doc.Severities, string(f.Severity))
	}

	body, err := json.Marshal(doc)
	if err != nil {
		i.log.WithError(err).Error("encode search document", nil)
		return
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(uuid.NewString()),
	)
	if err != nil {
		i.log.WithError(err).Error("search index request failed", map[string]interface{}{
			"index": i.index,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.log.Error("search index rejected document", map[string]interface{}{
			"index":  i.index,
			"status": res.Status(),
		})
	}
}
