package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"course-client/logger"
	"course-client/src/config"
	"course-client/src/models"
	"course-client/src/repository"
	"course-client/src/service"
	"course-client/src/store"
	"course-client/src/transport"
)

func main() {
	cfg := loadConfig()
	logger.Init(cfg.LogLevel)

	app, err := buildApp(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to initialize: %v", err)
	}

	if err := app.run(os.Args[1:]); err != nil {
		logger.L().Fatalf("%v", err)
	}
}

func loadConfig() config.GlobalConfig {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

type app struct {
	session    *service.SessionManager
	courses    *service.CourseCache
	enrollment *service.EnrollmentReconciler
	lessons    *service.LessonService
	users      *service.UserService
}

func buildApp(cfg config.GlobalConfig) (*app, error) {
	tokens, err := store.NewFileStore(cfg.SessionFile, []byte(cfg.SessionHashKey))
	if err != nil {
		return nil, fmt.Errorf("cannot open session store: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: transport.NewAuthorizedRoundTripper(nil, tokens),
	}
	client := repository.NewClient(cfg.APIBaseURL, httpClient)

	sessions := service.NewSessionManager(tokens, repository.NewAuthRepository(client))
	coursesAPI := repository.NewCoursesRepository(client)
	courses := service.NewCourseCache(coursesAPI, sessions, cfg.CourseCacheTTL)
	lessons := service.NewLessonService(repository.NewLessonsRepository(client), courses, sessions)
	enrollment := service.NewEnrollmentReconciler(coursesAPI, courses, lessons, sessions, service.LogNotifier{})
	users := service.NewUserService(repository.NewUsersRepository(client), sessions)

	return &app{
		session:    sessions,
		courses:    courses,
		enrollment: enrollment,
		lessons:    lessons,
		users:      users,
	}, nil
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("a command is required")
	}

	ctx := context.Background()
	command, rest := args[0], args[1:]

	switch command {
	case "login":
		return a.login(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "logout":
		return a.session.Logout()
	case "whoami":
		return a.whoami()
	case "courses":
		return a.listCourses(ctx, rest)
	case "course":
		return a.showCourse(ctx, rest)
	case "enroll":
		return a.withCourseID(rest, func(id int) error { return a.enrollment.Enroll(ctx, id) })
	case "unenroll":
		return a.withCourseID(rest, func(id int) error { return a.enrollment.Unenroll(ctx, id) })
	case "lessons":
		return a.listLessons(ctx, rest)
	case "profile":
		return a.profile(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if err := a.session.Login(ctx, *email, *password); err != nil {
		return err
	}
	user := a.session.CurrentUser()
	fmt.Printf("logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", "student", "student or teacher")
	fs.Parse(args)

	message, err := a.session.Register(ctx, *name, *email, *password, models.ParseRole(*role))
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func (a *app) whoami() error {
	user := a.session.CurrentUser()
	if !user.Authenticated() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("id=%d role=%s name=%s email=%s\n", user.UserID, user.Role, user.Name, user.Email)
	return nil
}

func (a *app) listCourses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	mine := fs.Bool("mine", false, "only courses you own or are enrolled in")
	refresh := fs.Bool("refresh", false, "bypass the course cache")
	fs.Parse(args)

	courses, err := a.courses.List(ctx, *refresh)
	if err != nil {
		return err
	}
	if *mine {
		courses = a.courses.FilterMine(courses)
	}
	for _, course := range courses {
		marker := " "
		if course.Enrolled {
			marker = "*"
		}
		fmt.Printf("%s %4d  %-30s students=%d\n", marker, course.ID, course.Title, course.EnrolledStudents)
	}
	return nil
}

func (a *app) showCourse(ctx context.Context, args []string) error {
	return a.withCourseID(args, func(id int) error {
		course, err := a.courses.FetchByID(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%d: %s\n%s\nteacher=%d students=%d enrolled=%v\n",
			course.ID, course.Title, course.Description, course.TeacherID, course.EnrolledStudents, course.Enrolled)
		return nil
	})
}

func (a *app) listLessons(ctx context.Context, args []string) error {
	return a.withCourseID(args, func(id int) error {
		lessons, err := a.lessons.List(ctx, id)
		if err != nil {
			return err
		}
		for _, lesson := range lessons {
			fmt.Printf("%3d. %s\n", lesson.Order, lesson.Title)
		}
		return nil
	})
}

func (a *app) profile(ctx context.Context) error {
	user, err := a.users.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("id=%d name=%s email=%s role=%s\n", user.ID, user.Name, user.Email, user.Role)
	return nil
}

func (a *app) withCourseID(args []string, fn func(int) error) error {
	if len(args) == 0 {
		return fmt.Errorf("a course id is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid course id %q", args[0])
	}
	return fn(id)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: course-client <command> [flags]

commands:
  login -email <email> -password <password>
  register -name <name> -email <email> -password <password> [-role student|teacher]
  logout
  whoami
  courses [-mine] [-refresh]
  course <id>
  lessons <id>
  enroll <id>
  unenroll <id>
  profile`)
}
