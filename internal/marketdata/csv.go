package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"alpha-search-lab/internal/domain"
)

// CSV loading errors.
var (
	ErrBadHeader = errors.New("csv header does not match timestamp_ms,open,high,low,close,volume")
)

// csvColumns is the expected header, in order.
var csvColumns = []string{"timestamp_ms", "open", "high", "low", "close", "volume"}

// LoadCSV reads a bar series from a CSV file with the header
// timestamp_ms,open,high,low,close,volume. The returned series is
// validated: non-empty and strictly ordered by timestamp.
func LoadCSV(path, symbol, interval string) (*domain.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := ReadCSV(f, symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return series, nil
}

// ReadCSV parses bars from r. See LoadCSV for the expected shape.
func ReadCSV(r io.Reader, symbol, interval string) (*domain.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range csvColumns {
		if header[i] != col {
			return nil, fmt.Errorf("column %d is %q: %w", i, header[i], ErrBadHeader)
		}
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseBar(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	series := &domain.PriceSeries{Symbol: symbol, Interval: interval, Bars: bars}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// WriteCSV writes a series in the shape ReadCSV accepts.
func WriteCSV(w io.Writer, series *domain.PriceSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range series.Bars {
		row := []string{
			strconv.FormatInt(b.TimestampMs, 10),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write bar %d: %w", b.TimestampMs, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseBar(row []string) (domain.Bar, error) {
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("timestamp_ms %q: %w", row[0], err)
	}
	vals := make([]float64, 5)
	for i := 1; i < len(row); i++ {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%s %q: %w", csvColumns[i], row[i], err)
		}
		vals[i-1] = v
	}
	return domain.Bar{
		TimestampMs: ts,
		Open:        vals[0],
		High:        vals[1],
		Low:         vals[2],
		Close:       vals[3],
		Volume:      vals[4],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
