package ingestion

import (
	"errors"
	"fmt"
)

var ErrKeyNotFound = errors.New("chave não encontrada nos detalhes")

type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("chave `%s` não encontrada nos detalhes da transação", e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// Find percorre as seções em ordem. Em cada seção olha primeiro a
// description da folha e depois as linhas, em ordem. A primeira description
// com a chave procurada vence.
func Find(doc *DetailDocument, key string) (Context, error) {
	if doc == nil {
		return nil, &KeyNotFoundError{Key: key}
	}

	for _, section := range doc.Sections {
		if section.Kind == SectionEmpty {
			continue
		}
		if section.Kind == SectionLeaf && section.Leaf.Description.Key == key {
			return section.Leaf.Value.Context, nil
		}
		for _, row := range section.Rows {
			if row.Description.Key == key {
				return row.Value.Context, nil
			}
		}
	}

	return nil, &KeyNotFoundError{Key: key}
}
