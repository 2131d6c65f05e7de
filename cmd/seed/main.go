package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/config"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/repository"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var randSeed int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机岗位)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&randSeed, "seed", time.Now().UnixNano(), "随机数种子")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository，并确保表已存在
	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("无法初始化数据库表", "error", err)
		return
	}

	if n <= 0 {
		slog.Error("请输入合法的记录数量")
		return
	}

	gen := seed.NewGenerator(randSeed)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
		hash, err := hasher.Hash(cfg.Seed.User.Password)
		if err != nil {
			slog.Error("无法生成密码哈希", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user := gen.User(cfg.Email.UserDomain)
			user.PasswordHash = hash

			exists, err := repo.CheckEmailIfExists(context.Background(), user.Email)
			if err != nil {
				slog.Error("无法检查邮箱", slog.String("error", err.Error()))
				continue
			}
			if exists {
				slog.Warn("邮箱已存在，跳过", slog.String("email", user.Email))
				continue
			}

			if err := repo.CreateUser(context.Background(), user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		// 岗位只能挂在 employer 或 admin 名下
		users, err := repo.GetAllUsers(context.Background())
		if err != nil {
			slog.Error("无法获取所有用户", slog.String("error", err.Error()))
			return
		}
		posters := make([]int64, 0)
		for _, u := range users {
			if u.UserType == domain.RoleEmployer || u.UserType == domain.RoleAdmin {
				posters = append(posters, u.ID)
			}
		}
		if len(posters) == 0 {
			slog.Error("没有可以发布岗位的用户，请先插入用户")
			return
		}

		rng := rand.New(rand.NewSource(randSeed))
		cnt := 0
		for i := 0; i < n; i++ {
			job := gen.Job(posters[rng.Intn(len(posters))])
			if err := repo.CreateJob(context.Background(), job); err != nil {
				slog.Error("无法插入岗位", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入岗位成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
