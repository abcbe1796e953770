// Package preview 生成存档预览缩略图
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// Thumbnail 把图像等比缩放到 maxW×maxH 以内并编码为 PNG
//
// 参数：
//   - src: 源图像
//   - maxW, maxH: 缩略图最大尺寸
//
// 返回：
//   - []byte: PNG 字节
//   - error: 参数无效或编码失败时返回错误
func Thumbnail(src image.Image, maxW, maxH int) ([]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	if maxW < 1 || maxH < 1 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", maxW, maxH)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("source image is empty")
	}

	w, h := FitSize(bounds.Dx(), bounds.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// FitSize 计算等比缩放后的尺寸（不放大，最小 1 像素）
func FitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}

	scale := float64(maxW) / float64(srcW)
	if s := float64(maxH) / float64(srcH); s < scale {
		scale = s
	}

	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// CaptureScreen 读取 ebiten 图像的像素
//
// 注意：只能在游戏循环开始后（Update/Draw 中）调用
func CaptureScreen(screen *ebiten.Image) image.Image {
	bounds := screen.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	screen.ReadPixels(img.Pix)
	return img
}
