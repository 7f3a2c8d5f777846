//go:build !wasip1

package main

import (
	"runtime"

	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Fatal("pixuli-guest must be built for wasip1",
		zap.String("goos", runtime.GOOS),
		zap.String("goarch", runtime.GOARCH),
		zap.String("hint", "GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared"),
	)
}
