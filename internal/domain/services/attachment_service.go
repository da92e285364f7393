package services

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"
)

// 附件URL前缀, 与静态路由保持一致
const UploadURLPrefix = "/uploads"

var (
	// ErrUnsupportedFileType 仅接受声明为 image/* 的文件
	ErrUnsupportedFileType = errors.New("仅支持上传图片文件")
	// ErrFileTooLarge 文件超过大小限制
	ErrFileTooLarge = errors.New("文件超过大小限制")
)

// InterfaceAttachmentService 附件服务接口
type InterfaceAttachmentService interface {
	StoreImage(file *multipart.FileHeader) (string, error)
	DeleteImage(ref string) error
}

// AttachmentService 管理工单图片附件。
// 校验依据客户端声明的MIME类型, 不做内容嗅探, 与初始版本行为一致。
type AttachmentService struct {
	Config *config.Config
}

// NewAttachmentService 创建一个新的附件服务
func NewAttachmentService(cfg *config.Config) InterfaceAttachmentService {
	return &AttachmentService{Config: cfg}
}

// randomInt31 生成一个安全的非负随机32位整数
func randomInt31() int32 {
	var num uint32
	if err := binary.Read(rand.Reader, binary.BigEndian, &num); err != nil {
		panic("generate random int32 failed")
	}
	return int32(num >> 1)
}

// 1 StoreImage 保存上传的图片并返回相对引用路径。
// 存储文件名由时间戳和随机数生成, 不使用原始文件名, 避免覆盖冲突。
func (s *AttachmentService) StoreImage(file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedFileType
	}

	if file.Size > s.Config.MaxUploadSize {
		return "", ErrFileTooLarge
	}

	if err := os.MkdirAll(s.Config.UploadDir, 0755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	storedName := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), randomInt31(), ext)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Config.UploadDir, storedName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return path.Join(UploadURLPrefix, storedName), nil
}

// 2 DeleteImage 删除附件文件, 文件不存在时视为成功
func (s *AttachmentService) DeleteImage(ref string) error {
	if ref == "" {
		return nil
	}

	// 只取文件名部分, 防止路径穿越
	name := filepath.Base(ref)
	err := os.Remove(filepath.Join(s.Config.UploadDir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
