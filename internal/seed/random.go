package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var digits = "0123456789"

// Generator 生成随机的测试数据，rng 由调用方提供以便测试时固定种子
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

// ChineseName 返回随机的姓和名（名为一到两个字）
func (g *Generator) ChineseName() (surname, given string) {
	surname = g.pick(commonSurnames)
	n := g.rng.Intn(2) + 1
	for i := 0; i < n; i++ {
		given += g.pick(commonNameCharacters)
	}
	return surname, given
}

// Romanize 把汉字转成首字母大写的拼音，例如 "伟强" -> "Weiqiang"
func Romanize(han string) string {
	syllables := pinyin.LazyConvert(han, nil)
	joined := strings.Join(syllables, "")
	if joined == "" {
		return ""
	}
	return strings.ToUpper(joined[:1]) + joined[1:]
}

// EmailLocalPart 由姓名拼音的前缀拼接若干数字得到
func (g *Generator) EmailLocalPart(fullName string) string {
	var b strings.Builder
	for _, syllable := range pinyin.LazyConvert(fullName, nil) {
		length := g.rng.Intn(len(syllable)) + 1
		b.WriteString(syllable[:length])
	}

	n := g.rng.Intn(3) + 1
	for i := 0; i < n; i++ {
		b.WriteByte(digits[g.rng.Intn(len(digits))])
	}
	return b.String()
}

var seedRoles = []domain.Role{
	domain.RoleCandidate,
	domain.RoleCandidate,
	domain.RoleCandidate,
	domain.RoleEmployer,
}

// User 返回一个尚未设置密码哈希的随机用户，三成左右是 employer
func (g *Generator) User(emailDomain string) *domain.User {
	surname, given := g.ChineseName()
	return &domain.User{
		Email:     g.EmailLocalPart(surname+given) + "@" + emailDomain,
		FirstName: Romanize(given),
		LastName:  Romanize(surname),
		UserType:  seedRoles[g.rng.Intn(len(seedRoles))],
	}
}

var (
	titles      = []string{"Backend Engineer", "Frontend Engineer", "Data Analyst", "Product Manager", "DevOps Engineer", "QA Engineer", "Mobile Developer"}
	companies   = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries"}
	locations   = []string{"Remote", "Shanghai", "Guangzhou", "Berlin", "London", "New York"}
	levels      = []string{"Junior", "Mid", "Senior", "Lead"}
	departments = []string{"Engineering", "Data", "Product", "Operations"}
	workModes   = []string{"REMOTE", "HYBRID", "ONSITE"}
	educations  = []string{"Bachelor", "Master", "None"}
	currencies  = []string{"USD", "EUR", "CNY", "GBP"}
	skillPool   = []string{"Go", "Java", "Python", "SQL", "Docker", "Kubernetes", "React", "TypeScript", "AWS", "Redis", "Kafka", "Linux"}
	jobTypes    = []domain.JobType{domain.JobTypeFullTime, domain.JobTypeFullTime, domain.JobTypePartTime, domain.JobTypeContract, domain.JobTypeInternship}
)

// skills 用 Fisher-Yates 洗牌后取前 n 个
func (g *Generator) skills() string {
	pool := append([]string{}, skillPool...)
	for i := len(pool) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	n := g.rng.Intn(4) + 2
	return strings.Join(pool[:n], ", ")
}

// Job 返回一个发布者为 postedBy 的随机岗位，薪资区间总是合法的
func (g *Generator) Job(postedBy int64) *domain.Job {
	title := g.pick(titles)
	company := g.pick(companies)
	level := g.pick(levels)

	salaryMin := float64((g.rng.Intn(100) + 30) * 1000)
	salaryMax := salaryMin + float64((g.rng.Intn(60)+5)*1000)
	currency := g.pick(currencies)

	deadline := g.now().AddDate(0, 0, g.rng.Intn(60)+7)

	return &domain.Job{
		Title:               fmt.Sprintf("%s %s", level, title),
		Company:             company,
		Location:            g.pick(locations),
		JobType:             jobTypes[g.rng.Intn(len(jobTypes))],
		Status:              domain.JobStatusActive,
		ExperienceLevel:     level,
		Department:          g.pick(departments),
		Category:            "Technology",
		Description:         fmt.Sprintf("%s is hiring a %s %s.", company, strings.ToLower(level), title),
		Requirements:        "- Solid fundamentals\n- Clear written communication\n- Ownership of shipped work",
		Responsibilities:    "- Build and maintain services\n- Review code",
		Benefits:            "Health insurance, flexible hours",
		SalaryMin:           &salaryMin,
		SalaryMax:           &salaryMax,
		SalaryCurrency:      &currency,
		WorkMode:            g.pick(workModes),
		EducationLevel:      g.pick(educations),
		Skills:              g.skills(),
		CompanyInfo:         company + " builds software for everyone.",
		PostedBy:            postedBy,
		ApplicationDeadline: &deadline,
	}
}
