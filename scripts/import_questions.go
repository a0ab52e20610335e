// 批量导入题目脚本
//
// 从 YAML 文件读取题目并逐条写入题库，校验规则与接口创建题目时完全一致，
// 不合法的题目会跳过并打印原因。
//
// 用法: go run scripts/import_questions.go -file data/questions.yaml

package main

import (
	"flag"
	"gmc_backend/internal/config"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/service"
	"gmc_backend/pkg/database"
	"gmc_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type questionDoc struct {
	TestPhase     string   `yaml:"testPhase"`
	Grade         string   `yaml:"grade"`
	Type          string   `yaml:"type"`
	Text          string   `yaml:"text"`
	Difficulty    string   `yaml:"difficulty"`
	Tags          []string `yaml:"tags"`
	CorrectAnswer string   `yaml:"correctAnswer"`
	CorrectOrder  []string `yaml:"correctOrder"`
	Options       []struct {
		ID   string `yaml:"id"`
		Text string `yaml:"text"`
	} `yaml:"options"`
	Items []struct {
		ID   string `yaml:"id"`
		Text string `yaml:"text"`
	} `yaml:"items"`
	Pairs []struct {
		ID    string `yaml:"id"`
		Left  string `yaml:"left"`
		Right string `yaml:"right"`
	} `yaml:"pairs"`
}

func (d questionDoc) toReq() service.QuestionReq {
	req := service.QuestionReq{
		TestPhase:     d.TestPhase,
		Grade:         d.Grade,
		Type:          d.Type,
		Text:          d.Text,
		Difficulty:    d.Difficulty,
		Tags:          d.Tags,
		CorrectAnswer: d.CorrectAnswer,
		CorrectOrder:  d.CorrectOrder,
	}
	for _, o := range d.Options {
		req.Options = append(req.Options, service.QuestionOptionReq{ID: o.ID, Text: o.Text})
	}
	for _, i := range d.Items {
		req.Items = append(req.Items, service.DragItemReq{ID: i.ID, Text: i.Text})
	}
	for _, p := range d.Pairs {
		req.Pairs = append(req.Pairs, service.MatchPairReq{ID: p.ID, Left: p.Left, Right: p.Right})
	}
	return req
}

func main() {
	file := flag.String("file", "data/questions.yaml", "题目文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取题目文件: %v", err)
	}

	var docs []questionDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		log.Fatalf("解析题目文件失败: %v", err)
	}

	questionService := service.NewQuestionService(repository.NewQuestionRepository(db))

	imported, skipped := 0, 0
	for i, doc := range docs {
		if _, err := questionService.Create(doc.toReq()); err != nil {
			log.Printf("第 %d 条题目跳过: %v", i+1, err)
			skipped++
			continue
		}
		imported++
	}

	log.Printf("完成！导入 %d 条，跳过 %d 条", imported, skipped)
}
