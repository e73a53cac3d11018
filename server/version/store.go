package version

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"
)

var (
	bucket = []byte("versions")
	record = []byte("binaries")
)

// BinaryVersions is the persisted record of the provisioned binaries.
type BinaryVersions struct {
	YtDlp       string `json:"ytDlp"`
	Ffmpeg      string `json:"ffmpeg"`
	Ffprobe     string `json:"ffprobe"`
	LastChecked string `json:"lastChecked"`
}

// Store persists the BinaryVersions record between runs.
type Store struct {
	db *bolt.DB
}

func NewStore(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(v BinaryVersions) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put(record, data)
	})
}

// Load returns the stored record. A missing record comes back as all
// Unknown sentinels with an empty LastChecked, which makes the next
// update check due immediately.
func (s *Store) Load() (BinaryVersions, error) {
	v := BinaryVersions{
		YtDlp:   Unknown,
		Ffmpeg:  Unknown,
		Ffprobe: Unknown,
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		data := b.Get(record)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &v)
	})

	return v, err
}
