package mapping

import (
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/quillbooks/invoicing_app/internal/models"
)

// ToDomainSequenceCounter converts a model SequenceCounter to its domain form
func ToDomainSequenceCounter(m models.SequenceCounter) domain.SequenceCounter {
	return domain.SequenceCounter{
		AccountID:     m.AccountID,
		Namespace:     domain.SequenceNamespace(m.Namespace),
		LastValue:     m.LastValue,
		Template:      m.Template,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}
