package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vitalops-backend/internal/platform/db"
)

// Entity は連番を採番する対象の種別。プレフィックスは旧システムの採番規則を踏襲。
type Entity string

const (
	Asset      Entity = "AST"
	Rental     Entity = "RNT"
	Sale       Entity = "SAL"
	Invoice    Entity = "INV"
	Payment    Entity = "PAY"
	Job        Entity = "JOB"
	SleepStudy Entity = "SLP"
)

// Format: 採番値 → "RNT-2025-001"。999を超えても桁が増えるだけで切り捨てない。
func Format(e Entity, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%03d", e, year, n)
}

// Parse: "RNT-2025-007" → (RNT, 2025, 7)。形式不正はエラー。
func Parse(code string) (Entity, int, int64, error) {
	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid code format: %q", code)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid year in code %q", code)
	}
	n, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid sequence in code %q", code)
	}
	return Entity(parts[0]), year, n, nil
}

// Next は (entity, year) ごとのカウンタをアトミックにインクリメントして採番する。
// 旧実装の「最後の番号を検索して+1」はトランザクション外の read-then-write で
// 同時リクエスト時に重複番号を生むため、カウンタ方式に置き換えた。
// LAST_INSERT_ID() トリックにより単文で確定するので、呼び出し元のTx内でも安全。
func Next(ctx context.Context, q db.DBTX, e Entity, year int) (string, error) {
	const ins = `
	INSERT INTO sequence_counters (entity, year, last_value)
	VALUES (?, ?, LAST_INSERT_ID(1))
	ON DUPLICATE KEY UPDATE last_value = LAST_INSERT_ID(last_value + 1)`

	res, err := q.ExecContext(ctx, ins, string(e), year)
	if err != nil {
		return "", err
	}
	n, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return Format(e, year, n), nil
}
