package main

import (
	"context"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/krakosik/symposium/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type seedAuthor struct {
	name      string
	email     string
	studentID string
}

type seedSubmission struct {
	author             int
	title              string
	description        string
	kind               string
	coAuthors          string
	coAuthorStudentIDs string
	abstract           string
	keywords           string
}

var seedAuthors = []seedAuthor{
	{name: "Zhang San", email: "zhang.san@university.edu", studentID: "2021001"},
	{name: "Li Si", email: "li.si@university.edu", studentID: "2021002"},
	{name: "Wang Wu", email: "wang.wu@university.edu", studentID: "2021003"},
	{name: "Zhao Liu", email: "zhao.liu@university.edu", studentID: "2021004"},
	{name: "Qian Qi", email: "qian.qi@university.edu", studentID: "2021005"},
}

var seedSubmissions = []seedSubmission{
	{
		author:             0,
		title:              "Deep learning for medical image segmentation",
		description:        "A segmentation model reaching state-of-the-art results on several medical imaging datasets.",
		kind:               "PAPER",
		coAuthors:          "Li Si, Wang Wu",
		coAuthorStudentIDs: "2021002,2021003",
		abstract:           "An improved U-Net with attention and multi-scale feature fusion that raises the Dice coefficient by 5-8% on MICCAI 2023 challenge data.",
		keywords:           "deep learning, medical imaging, segmentation, U-Net, attention",
	},
	{
		author:      1,
		title:       "Vehicle detection and tracking for intelligent traffic systems",
		description: "A real-time vehicle detection and tracking system for complex traffic scenes.",
		kind:        "POSTER",
		abstract:    "A YOLOv5 based detector combined with multi-object tracking, tuned for night and bad weather conditions.",
		keywords:    "computer vision, intelligent traffic, YOLO, object tracking",
	},
	{
		author:             2,
		title:              "Blockchain based supply chain management",
		description:        "A transparent supply chain platform whose records cannot be tampered with.",
		kind:               "DEMO",
		coAuthors:          "Zhao Liu",
		coAuthorStudentIDs: "2021004",
		abstract:           "A decentralized supply chain system with smart contracts automating the business flow and a web interface on top.",
		keywords:           "blockchain, supply chain, smart contracts, decentralization",
	},
	{
		author:      3,
		title:       "Natural language processing for sentiment analysis",
		description: "BERT on Chinese sentiment analysis, with an improved domain adaptation method.",
		kind:        "PAPER",
		abstract:    "We evaluate BERT on Chinese sentiment datasets and propose a domain adaptive variant that improves on it.",
		keywords:    "NLP, sentiment analysis, BERT, domain adaptation",
	},
	{
		author:             4,
		title:              "Augmented reality in education",
		description:        "An interactive AR learning platform that improves the learning experience.",
		kind:               "POSTER",
		coAuthors:          "Sun Ba",
		coAuthorStudentIDs: "2021006",
		abstract:           "An augmented reality platform for K12 education that visualizes abstract concepts across maths, physics and chemistry.",
		keywords:           "augmented reality, education technology, interactive learning, K12",
	},
}

// seedVotes pairs a voter (index into seedAuthors) with a submission.
var seedVotes = [][2]int{
	{1, 0}, {2, 0},
	{0, 1}, {2, 1},
	{0, 2}, {1, 2},
	{1, 3},
	{0, 4}, {2, 4},
}

func seedRun(ctx context.Context, cfg dto.Config) error {
	db, err := repository.Open(cfg)
	if err != nil {
		return err
	}
	repositories := repository.NewRepositories(db)

	existing, err := repositories.Submission().Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		logrus.Infof("Found %d existing submissions, skipping sample data", existing)
		return nil
	}

	clients := client.NewClients(cfg)
	defer func() {
		if err := clients.Close(); err != nil {
			logrus.Errorf("Error closing clients: %v", err)
		}
	}()
	services := service.NewServices(repositories, cfg, clients, nil)

	submissionIDs := make([]string, 0, len(seedSubmissions))
	for _, s := range seedSubmissions {
		author := seedAuthors[s.author]
		request := dto.SubmissionRequest{
			Title:              s.title,
			Description:        optional(s.description),
			Type:               s.kind,
			AuthorName:         author.name,
			AuthorEmail:        author.email,
			AuthorStudentID:    optional(author.studentID),
			CoAuthors:          optional(s.coAuthors),
			CoAuthorStudentIDs: optional(s.coAuthorStudentIDs),
			Abstract:           optional(s.abstract),
			Keywords:           optional(s.keywords),
		}
		if err := request.Validate(); err != nil {
			return err
		}
		created, err := services.Submission().Create(ctx, request)
		if err != nil {
			return err
		}
		submissionIDs = append(submissionIDs, created.ID)
	}

	for _, v := range seedVotes {
		voter := seedAuthors[v[0]]
		if _, err := services.Vote().Cast(ctx, submissionIDs[v[1]], voter.studentID, voter.name); err != nil {
			return err
		}
	}

	logrus.Infof("Created %d submissions and %d votes", len(submissionIDs), len(seedVotes))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample users, submissions and votes into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedRun(cmd.Context(), configFromContext(cmd.Context()))
		},
	}
}
