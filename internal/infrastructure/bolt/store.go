// Package bolt implementa los repositorios del motor sobre un archivo bbolt embebido.
// Pensado para despliegues de un solo nodo y para pruebas: bbolt serializa todas las
// transacciones de escritura, por lo que el read-validate-write del stock no necesita bloqueos de fila.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketItems     = []byte("stock_items")
	bucketMovements = []byte("stock_movements")
)

// Store envuelve la base bbolt.
type Store struct {
	db *bbolt.DB
}

// Open abre (o crea) el archivo y asegura los buckets.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de bolt: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout:      time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, fmt.Errorf("abrir bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketItems, bucketMovements} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("crear bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close cierra el archivo.
func (s *Store) Close() error {
	return s.db.Close()
}
