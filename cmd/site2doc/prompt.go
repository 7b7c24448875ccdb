package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	urlPrompt   = "Enter the URL of the website: "
	depthPrompt = "Enter the depth of crawling: "
)

// Prompter 交互式读取种子URL和深度
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter 创建交互输入器
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// PromptURL 读取一行作为URL
func (p *Prompter) PromptURL() (string, error) {
	line, err := p.readLine(urlPrompt)
	if err != nil {
		return "", fmt.Errorf("读取URL失败: %w", err)
	}
	if line == "" {
		return "", fmt.Errorf("URL不能为空")
	}
	return line, nil
}

// PromptDepth 读取一行并解析为整数,非整数时返回错误
func (p *Prompter) PromptDepth() (int, error) {
	line, err := p.readLine(depthPrompt)
	if err != nil {
		return 0, fmt.Errorf("读取深度失败: %w", err)
	}
	depth, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("深度必须是整数: %q", line)
	}
	return depth, nil
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
