package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const httpTimeout = 15 * time.Second

// ListenForSignalsAndShutdown 阻塞等待停机信号，然后编排优雅停机：
// 先关闭HTTP服务器（允许正在进行的请求完成），再取消后台任务。
func ListenForSignalsAndShutdown(server *http.Server, cancelBackground context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 阻塞直到接收到停机信号
	<-sigChan
	fmt.Println("\n收到关闭信号，开始优雅停机...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Gin服务器关闭错误: %v\n", err)
	} else {
		fmt.Println("Gin服务器已关闭。")
	}

	// 停止后台健康检查等任务
	cancelBackground()

	fmt.Println("优雅停机完成。")
}
