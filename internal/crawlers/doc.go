// Package crawlers 提供页面获取、链接提取、遍历状态和PDF渲染
//
// # 概述
//
// crawlers包包含遍历驱动需要的全部底层组件。遍历本身由 core 包完成,
// 这里只负责单个页面的获取、解析以及渲染,不持有任何跨页面的全局状态。
//
// # 核心组件
//
// ## StaticFetcher
//
// 基于Colly的同步获取器。每次调用克隆一个collector,附加配置的请求头部,
// 4xx/5xx 状态码返回 *HTTPStatusError。响应体按 Content-Encoding 解压(gzip, deflate, br)。
//
//	fetcher := NewStaticFetcher(config, headerProvider)
//	page, err := fetcher.Fetch(ctx, "https://howard.edu/")
//
// ## LinkExtractor
//
// 获取页面后用goquery按文档顺序遍历 a[href],逐个调用 ClassifyHref:
//   - href 包含站点标识: 原样保留
//   - href 以 "/" 开头: 相对当前页面解析后保留
//   - 其他: 丢弃
//
// 结果不去重。获取或解析失败时返回空集合,不返回错误。
//
//	extractor := NewLinkExtractor(fetcher, DeriveSiteToken(seed))
//	links := extractor.Extract(ctx, seed)
//
// ## VisitedSet 与 TaskStack
//
// VisitedSet 是只增不减的URL集合,VisitIfNew 原子地完成检查和插入。
// TaskStack 是显式的后进先出栈,PushChildren 逆序入栈以保持文档顺序出栈。
//
// ## ChromeRenderer
//
// 基于go-rod的HTML到PDF渲染器。浏览器按需启动并在页面之间复用;
// 浏览器崩溃时当前页面失败,下一页渲染前重启,重启次数受 max_browser_restarts 限制。
// PDF先写入 .part 文件再重命名,失败时不留下半成品。
//
//	renderer := NewChromeRenderer(renderConfig, NewResourceMonitor(resourceConfig))
//	defer renderer.Close()
//	err := renderer.RenderPDF(ctx, "staging/programs.html", "pdf/programs.pdf")
//
// ## ResourceMonitor
//
// 使用gopsutil采样系统可用内存。可用内存低于紧急阈值时,渲染器会在下一页之前回收浏览器。
//
// # 并发安全
//
// VisitedSet 和 ChromeRenderer 可并发调用;StaticFetcher 每次调用使用独立的collector;
// TaskStack 只在遍历goroutine中使用,不加锁。
package crawlers
