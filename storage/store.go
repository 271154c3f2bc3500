package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"costdb/importer"
	"costdb/internal/domain/models"
)

// Имена файлов в каталоге обработанных данных
const (
	StandardizedFile = "standardized_items.csv"
	AnalyticsFile    = "cost_analytics.csv"
	AnomaliesFile    = "anomalies.csv"
	BaselineFile     = "baseline_analytics.csv"
)

// BackupTimeLayout суффикс резервной копии исходного файла
const BackupTimeLayout = "20060102_150405"

// Store файловое хранилище конвейера: исходные заказы и три выходных файла.
// Каждый этап читает входной файл целиком и пишет выходной атомарно.
type Store struct {
	rawFile string
	dir     string
}

// NewStore создает хранилище
func NewStore(rawFile, processedDir string) *Store {
	return &Store{rawFile: rawFile, dir: processedDir}
}

// RawPath путь к исходному файлу заказов
func (s *Store) RawPath() string { return s.rawFile }

// Dir каталог обработанных данных
func (s *Store) Dir() string { return s.dir }

// Path путь к файлу в каталоге обработанных данных
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// ReadOrders читает исходные заказы
func (s *Store) ReadOrders() ([]models.PurchaseOrder, error) {
	orders, err := importer.ReadPurchaseOrdersFile(s.rawFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.rawFile)
	}
	return orders, err
}

// WriteStandardized сохраняет standardized_items.csv
func (s *Store) WriteStandardized(items []models.StandardizedItem) error {
	return WriteFileAtomic(s.Path(StandardizedFile), func(w io.Writer) error {
		return EncodeStandardized(w, items)
	})
}

// ReadStandardized читает standardized_items.csv
func (s *Store) ReadStandardized() ([]models.StandardizedItem, error) {
	var items []models.StandardizedItem
	err := s.readFile(s.Path(StandardizedFile), func(r io.Reader) (err error) {
		items, err = DecodeStandardized(r)
		return err
	})
	return items, err
}

// WriteAnalytics сохраняет cost_analytics.csv
func (s *Store) WriteAnalytics(records []models.CostAnalyticsRecord) error {
	return WriteFileAtomic(s.Path(AnalyticsFile), func(w io.Writer) error {
		return EncodeAnalytics(w, records)
	})
}

// ReadAnalytics читает cost_analytics.csv
func (s *Store) ReadAnalytics() ([]models.CostAnalyticsRecord, error) {
	return s.readAnalytics(s.Path(AnalyticsFile))
}

// WriteAnomalies сохраняет anomalies.csv; пустой список дает файл только с заголовком
func (s *Store) WriteAnomalies(records []models.AnomalyRecord) error {
	return WriteFileAtomic(s.Path(AnomaliesFile), func(w io.Writer) error {
		return EncodeAnomalies(w, records)
	})
}

// ReadAnomalies читает anomalies.csv
func (s *Store) ReadAnomalies() ([]models.AnomalyRecord, error) {
	var records []models.AnomalyRecord
	err := s.readFile(s.Path(AnomaliesFile), func(r io.Reader) (err error) {
		records, err = DecodeAnomalies(r)
		return err
	})
	return records, err
}

// SnapshotBaseline копирует текущий cost_analytics.csv в baseline_analytics.csv.
// Возвращает false, если аналитики еще нет.
func (s *Store) SnapshotBaseline() (bool, error) {
	data, err := os.ReadFile(s.Path(AnalyticsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = WriteFileAtomic(s.Path(BaselineFile), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return err == nil, err
}

// ReadBaseline читает снимок аналитики предыдущего запуска
func (s *Store) ReadBaseline() ([]models.CostAnalyticsRecord, error) {
	return s.readAnalytics(s.Path(BaselineFile))
}

// ReplaceRaw атомарно заменяет исходный файл; прежний файл сохраняется
// рядом с суффиксом времени. Возвращает путь резервной копии или пустую строку.
func (s *Store) ReplaceRaw(data []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(filepath.Dir(s.rawFile), 0o755); err != nil {
		return "", err
	}

	var backup string
	if _, err := os.Stat(s.rawFile); err == nil {
		ext := filepath.Ext(s.rawFile)
		base := s.rawFile[:len(s.rawFile)-len(ext)]
		backup = fmt.Sprintf("%s_backup_%s%s", base, now.Format(BackupTimeLayout), ext)
		if err := copyFile(s.rawFile, backup); err != nil {
			return "", fmt.Errorf("failed to back up raw file: %w", err)
		}
	}

	err := WriteFileAtomic(s.rawFile, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return "", err
	}
	return backup, nil
}

// OutputsExist сообщает, какие выходные файлы уже созданы
func (s *Store) OutputsExist() map[string]bool {
	out := make(map[string]bool, 3)
	for _, name := range []string{StandardizedFile, AnalyticsFile, AnomaliesFile} {
		_, err := os.Stat(s.Path(name))
		out[name] = err == nil
	}
	return out
}

func (s *Store) readAnalytics(path string) ([]models.CostAnalyticsRecord, error) {
	var records []models.CostAnalyticsRecord
	err := s.readFile(path, func(r io.Reader) (err error) {
		records, err = DecodeAnalytics(r)
		return err
	})
	return records, err
}

func (s *Store) readFile(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// WriteFileAtomic пишет во временный файл того же каталога и переименовывает его.
// При ошибке исходный файл остается нетронутым.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return WriteFileAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
