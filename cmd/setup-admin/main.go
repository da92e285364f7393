// 交互式创建管理员账户的命令行工具
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/database"

	"github.com/joho/godotenv"
)

func main() {
	force := flag.Bool("force", false, "系统中已有管理员时仍然继续创建")
	flag.Parse()

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		log.Printf("无法加载.env文件: %v", err)
	}

	cfg := config.GetConfig()
	if cfg.UseMemoryStorage() {
		log.Fatal("内存存储模式下无法持久化管理员账户，请配置数据库后重试")
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("无法创建数据库连接池: %v", err)
	}
	db := pool.GetDB()

	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		log.Fatalf("迁移admins表失败: %v", err)
	}

	adminService := services.NewAdminService(db, cfg)

	count, err := adminService.CountAdmins()
	if err != nil {
		log.Fatalf("查询管理员数量失败: %v", err)
	}
	if count > 0 && !*force {
		log.Fatalf("系统中已有 %d 个管理员账户, 如需继续请使用 --force", count)
	}

	reader := bufio.NewReader(os.Stdin)

	username := prompt(reader, "用户名: ")
	if username == "" {
		log.Fatal("用户名不能为空")
	}

	name := prompt(reader, "显示名称: ")
	if name == "" {
		name = username
	}

	password := prompt(reader, "密码: ")
	if len(password) < 6 {
		log.Fatal("密码长度至少为6位")
	}

	confirm := prompt(reader, "确认密码: ")
	if password != confirm {
		log.Fatal("两次输入的密码不一致")
	}

	admin := &models.Admin{
		Username: username,
		Password: password,
		Name:     name,
		Role:     "admin",
	}

	if err := adminService.CreateAdmin(admin); err != nil {
		if err == services.ErrAdminAlreadyExists {
			log.Fatalf("用户名 %s 已存在", username)
		}
		log.Fatalf("创建管理员失败: %v", err)
	}

	fmt.Printf("管理员账户 %s 创建成功\n", username)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("读取输入失败: %v", err)
	}
	return strings.TrimSpace(line)
}
