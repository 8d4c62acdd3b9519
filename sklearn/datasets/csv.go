package datasets

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
)

// FetchOptions はFetchCSVのHTTP設定
type FetchOptions struct {
	// Timeout は1リクエストあたりのタイムアウト (0 なら30秒)
	Timeout time.Duration

	// Retries は接続エラーと5xxに対する再試行回数
	Retries int

	// RetryWait は再試行の初回待ち時間 (0 ならrestyの既定値)
	RetryWait time.Duration
}

// ReadCSV はヘッダー行付きCSVを読み込む
// 先頭のUTF-8 BOMと列名の前後の空白は取り除く
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "read csv")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	columns := make([]string, len(header))
	for j, h := range header {
		columns[j] = strings.TrimSpace(h)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv rows")
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// LoadCSV はローカルのCSVファイルを読み込む
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	log.GetLoggerWithName("datasets").Info("dataset loaded",
		log.SourceKey, path,
		log.SamplesKey, table.NRows(),
		log.FeaturesKey, len(table.Columns),
	)
	return table, nil
}

// FetchCSV はURLからCSVを取得して読み込む
func FetchCSV(ctx context.Context, url string, opts FetchOptions) (*Table, error) {
	logger := log.GetLoggerWithName("datasets")
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait).SetRetryMaxWaitTime(4 * opts.RetryWait)
	}

	start := time.Now()
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		logger.Error("fetch failed", err, log.SourceKey, url)
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	if resp.IsError() {
		err := errors.Newf("fetch %s: unexpected status %d", url, resp.StatusCode())
		logger.Error("fetch failed", err, log.SourceKey, url)
		return nil, err
	}

	table, err := ReadCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", url)
	}
	logger.Info("dataset fetched",
		log.SourceKey, url,
		log.SamplesKey, table.NRows(),
		log.FeaturesKey, len(table.Columns),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return table, nil
}
