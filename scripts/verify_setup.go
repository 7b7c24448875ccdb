package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/shirou/gopsutil/v3/mem"
)

// 最低可用内存(MB),低于该值时浏览器很可能被频繁回收
const minAvailableMemoryMB = 512

func main() {
	fmt.Println("==============================================")
	fmt.Println("  site2doc 运行环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	fmt.Printf("✅ Go版本: %s\n", runtime.Version())
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// PDF渲染依赖Chrome/Chromium
	if bin, found := launcher.LookPath(); found {
		fmt.Printf("✅ Chrome已找到: %s\n", bin)
	} else {
		fmt.Println("⚠️  未找到本地Chrome - 首次渲染时将自动下载Chromium")
		fmt.Println("   也可以在 render.browser_bin 中指定浏览器路径")
	}

	// DOCX转换是可选功能
	if out := getCommandOutput("soffice", "--version"); out != "" {
		fmt.Printf("✅ LibreOffice已安装: %s\n", strings.TrimSpace(out))
	} else {
		fmt.Println("⚠️  LibreOffice未安装 - --docx 功能将不可用")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		availableMB := vm.Available / 1024 / 1024
		fmt.Printf("✅ 可用内存: %s / %s\n", utils.FormatBytes(vm.Available), utils.FormatBytes(vm.Total))
		if availableMB < minAvailableMemoryMB {
			fmt.Printf("⚠️  可用内存低于 %dMB, 渲染可能不稳定\n", minAvailableMemoryMB)
		}
	} else {
		fmt.Printf("⚠️  无法读取内存信息: %v\n", err)
	}

	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/site2doc",
		"internal/core",
		"internal/crawlers",
		"internal/utils",
		"internal/models",
		"internal/config",
	}
	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build ./cmd/site2doc' 构建项目")
		fmt.Println("  2. 运行 './site2doc --help' 查看帮助")
		os.Exit(0)
	}
	fmt.Println("❌ 环境验证失败,请解决上述问题。")
	os.Exit(1)
}

// getCommandOutput 获取命令输出,失败时返回空字符串
func getCommandOutput(name string, args ...string) string {
	output, err := exec.Command(name, args...).Output()
	if err != nil {
		return ""
	}
	return string(output)
}
