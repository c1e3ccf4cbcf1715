package usecase

import (
	"fmt"
	"os"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/repository"
)

// SnapshotLogger 資産残高推移のCSV出力
type SnapshotLogger struct {
	snapRepo    repository.SnapshotRepository
	logFilePath string
}

// NewSnapshotLogger 生成
func NewSnapshotLogger(snapRepo repository.SnapshotRepository, logFilePath string) *SnapshotLogger {
	return &SnapshotLogger{
		snapRepo:    snapRepo,
		logFilePath: logFilePath,
	}
}

// AppendLog 指定した金融機関の最新スナップショットを追記
func (l *SnapshotLogger) AppendLog(institutionID uint) error {
	file, err := os.OpenFile(l.logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() == 0 {
		fmt.Fprintf(file, "日時,金融機関ID,BTC換算合計,USDT換算合計\n")
	}

	snapshots, err := l.snapRepo.GetSnapshots(institutionID, time.Time{})
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	latest := snapshots[len(snapshots)-1]
	fmt.Fprintf(file, "%s,%d,%s,%s\n", latest.RecordedAt.Format(time.RFC3339), institutionID, latest.BTCTotal, latest.USDTTotal)

	return nil
}
