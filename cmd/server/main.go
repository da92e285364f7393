// @title           KMU Hostel Maintenance API
// @version         1.0
// @description     Hostel maintenance ticket intake and triage service

// @contact.name   API Support
// @contact.email  support@example.com

// @host      localhost:5000
// @BasePath  /api
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/iamdanielchali/KMU-maintenance/internal/app/routes"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/database"
	Logger "github.com/iamdanielchali/KMU-maintenance/pkg/logger"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	var db *gorm.DB
	if cfg.UseMemoryStorage() {
		// 内存模式：不连接数据库，容器会选择内存实现
		Logger.Warning("以内存存储模式运行，重启后数据将丢失")
	} else {
		// 创建优化的数据库连接池
		pool, err := database.NewConnectionPool(cfg)
		if err != nil {
			log.Fatalf("无法创建数据库连接池: %v", err)
		}
		db = pool.GetDB()

		// 根据配置执行不同的数据库操作
		if cfg.DBMigrationMode == "drop" {
			// 删除并重建表
			log.Println("警告: 在drop模式下运行，将删除并重建所有表")
			if err := dropAndRecreateTables(db); err != nil {
				log.Fatalf("删除并重建表失败: %v", err)
			}
		} else if cfg.DBMigrationMode == "alter" {
			// 执行高级迁移，清理历史遗留列
			log.Println("在alter模式下运行，将修改表结构以匹配模型")
			if err := advancedMigrate(db, cfg); err != nil {
				log.Fatalf("高级迁移失败: %v", err)
			}
		} else {
			// 默认AutoMigrate，只会添加新列和新表，不会删除或修改列
			log.Println("在标准模式下运行，将只添加新列和新表")
			if err := autoMigrate(db); err != nil {
				log.Fatalf("自动迁移失败: %v", err)
			}
		}

		// 初始化工单编号计数器
		if err := services.EnsureTicketCounter(db); err != nil {
			log.Fatalf("初始化工单计数器失败: %v", err)
		}

		// 确保系统中有管理员账户
		ensureAdminExists(db, cfg)

		printSystemInfo(pool)
	}

	// 初始化路由
	r := routes.SetupRouter(db, cfg)

	// 使用配置中的端口，而不是直接从环境变量获取
	port := cfg.ServerPort

	// 启动服务器 - 监听所有接口(0.0.0.0)而不是只监听localhost
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Report{},
		&models.TicketCounter{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// advancedMigrate 执行高级迁移，删除reports表中不再属于模型的历史列
func advancedMigrate(db *gorm.DB, cfg *config.Config) error {
	// 获取底层SQL连接
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	// 禁用外键约束检查
	_, err = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0")
	if err != nil {
		log.Printf("禁用外键约束检查失败: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1") // 确保在函数结束时重新启用外键约束

	var tableExists bool
	err = sqlDB.QueryRow("SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = 'reports'", cfg.DBName).Scan(&tableExists)
	if err != nil {
		log.Printf("检查表是否存在失败: %v", err)
	}

	if tableExists {
		rows, err := sqlDB.Query(`
			SELECT COLUMN_NAME
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = 'reports'
		`, cfg.DBName)

		if err != nil {
			log.Printf("查询表列失败: %v", err)
		} else {
			defer rows.Close()

			// 定义应该存在于模型中的列名
			modelColumns := map[string]bool{
				"id": true, "hostel": true, "room": true, "issue_type": true,
				"description": true, "contact": true, "image": true,
				"ticket_number": true, "status": true, "comments": true,
				"created_at": true, "updated_at": true,
			}

			for rows.Next() {
				var columnName string
				if err := rows.Scan(&columnName); err != nil {
					log.Printf("扫描列信息失败: %v", err)
					continue
				}

				if !modelColumns[columnName] {
					log.Printf("在reports表中发现多余列: %s，尝试删除", columnName)
					_, err = sqlDB.Exec(fmt.Sprintf("ALTER TABLE reports DROP COLUMN %s", columnName))
					if err != nil {
						log.Printf("删除列失败: %v", err)
					}
				}
			}
		}
	}

	// 自动迁移其他表
	return autoMigrate(db)
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	// 获取底层SQL连接
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	// 禁用外键约束检查
	_, err = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0")
	if err != nil {
		log.Printf("禁用外键约束检查失败: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1") // 确保在函数结束时重新启用外键约束

	// 删除所有表
	tables := []string{"admins", "reports", "ticket_counters"}

	for _, table := range tables {
		log.Printf("删除表: %s", table)
		_, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
		if err != nil {
			log.Printf("删除表失败: %v", err)
		}
	}

	// 重新创建表
	return autoMigrate(db)
}

// ensureAdminExists 确保系统中有管理员账户
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.Admin{}).Count(&count)

	if count == 0 {
		if cfg.DefaultAdminPassword == "" {
			log.Println("系统中没有管理员账户，且未配置DEFAULT_ADMIN_PASSWORD，请使用setup-admin命令创建")
			return
		}

		// 如果没有管理员，创建默认管理员
		hashedPassword, err := services.HashPassword(cfg.DefaultAdminPassword)
		if err != nil {
			log.Fatalf("生成密码哈希失败: %v", err)
		}

		admin := models.Admin{
			Username: "admin",
			Password: hashedPassword,
			Name:     "Administrator",
			Role:     "admin",
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("创建默认管理员失败: %v", err)
		}

		log.Println("已创建默认管理员账户")
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	// 打印数据库连接池信息
	stats, err := pool.Stats()
	if err == nil {
		log.Printf("数据库连接池状态: %+v", stats)
	}

	// 打印系统资源信息
	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())
}
