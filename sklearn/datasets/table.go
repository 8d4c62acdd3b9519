// Package datasets はCSVの読み込みと、Defaultデータセットの特徴量構築を提供する
//
// 使用例:
//
//	table, err := datasets.LoadCSV("Default.csv")
//	X, y, names, err := datasets.BuildDefaultFeatures(table, "default")
package datasets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// missingValues は欠損とみなすセルの値
var missingValues = map[string]struct{}{
	"":    {},
	"NA":  {},
	"NaN": {},
}

// Table は列名付きの文字列表
type Table struct {
	Columns []string
	Rows    [][]string
}

// NRows は行数を返す
func (t *Table) NRows() int {
	return len(t.Rows)
}

// Index は列名の位置を返す。存在しなければ -1
func (t *Table) Index(name string) int {
	for j, c := range t.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// Has は列が存在するかを返す
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Column は指定列の値をコピーして返す
func (t *Table) Column(name string) ([]string, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, errors.NewMissingColumnError("Table.Column", name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out, nil
}

// DropColumn は列を削除する。削除したら true
func (t *Table) DropColumn(name string) bool {
	j := t.Index(name)
	if j < 0 {
		return false
	}
	t.Columns = append(t.Columns[:j:j], t.Columns[j+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:j:j], row[j+1:]...)
	}
	return true
}

// DropMissing は欠損セルを含む行を削除し、削除した行数を返す
// columns を省略した場合はすべての列を調べる
func (t *Table) DropMissing(columns ...string) (int, error) {
	idx := make([]int, 0, len(columns))
	for _, c := range columns {
		j := t.Index(c)
		if j < 0 {
			return 0, errors.NewMissingColumnError("Table.DropMissing", c)
		}
		idx = append(idx, j)
	}
	if len(columns) == 0 {
		for j := range t.Columns {
			idx = append(idx, j)
		}
	}

	kept := t.Rows[:0]
	for _, row := range t.Rows {
		missing := false
		for _, j := range idx {
			if _, ok := missingValues[strings.TrimSpace(row[j])]; ok {
				missing = true
				break
			}
		}
		if !missing {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	return dropped, nil
}

// Float は列を数値として読み取る
//
// "Yes"/"No"（大文字小文字は区別しない）は 1/0 に変換し、
// DataConversionWarning を一度だけ出す。
func (t *Table) Float(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(col))
	converted := false
	for i, raw := range col {
		s := strings.TrimSpace(raw)
		switch strings.ToLower(s) {
		case "yes":
			out[i] = 1
			converted = true
			continue
		case "no":
			out[i] = 0
			converted = true
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.NewValueError("Table.Float",
				fmt.Sprintf("column %q row %d: cannot parse %q as a number", name, i, raw))
		}
		out[i] = v
	}
	if converted {
		errors.Warn(errors.NewDataConversionWarning("string", "float64",
			fmt.Sprintf("column %q encoded Yes/No as 1/0", name)))
	}
	return out, nil
}
