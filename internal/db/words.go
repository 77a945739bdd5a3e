package db

import (
	"encoding/csv"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WordRecord struct {
	Language string
	Text     string
}

// LoadWordLibrary reads language,word rows from a CSV and inserts the ones not
// already stored. It returns how many rows were new.
func LoadWordLibrary(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := ReadWords(path)
	if err != nil {
		return 0, err
	}
	return InsertWords(conn, records)
}

func InsertWords(conn *gorm.DB, records []WordRecord) (int, error) {
	inserted := 0
	for _, record := range records {
		entry := WordLibrary{
			Language: record.Language,
			Text:     record.Text,
		}
		result := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if err := result.Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return inserted, err
		}
		if result.RowsAffected > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// LoadWordLists returns every stored word grouped by language, in insertion order.
func LoadWordLists(conn *gorm.DB) (map[string][]string, error) {
	if conn == nil {
		return nil, nil
	}
	var rows []WordLibrary
	if err := conn.Order("language").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	lists := make(map[string][]string)
	for _, row := range rows {
		lists[row.Language] = append(lists[row.Language], row.Text)
	}
	return lists, nil
}

// ReadWords parses a CSV with a language,word header. Rows missing either
// column are skipped.
func ReadWords(path string) ([]WordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []WordRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		language := strings.ToLower(strings.TrimSpace(row[0]))
		text := strings.TrimSpace(row[1])
		if language == "" || text == "" {
			continue
		}
		records = append(records, WordRecord{Language: language, Text: text})
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
