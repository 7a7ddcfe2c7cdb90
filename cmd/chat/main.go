package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klipach/groupchat/auth"
	"github.com/klipach/groupchat/cache"
	"github.com/klipach/groupchat/chat"
	"github.com/klipach/groupchat/config"
	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/log"
	"github.com/klipach/groupchat/picker"
	"github.com/klipach/groupchat/store"
)

// noopCache stands in when the local cache database cannot be opened. The
// cache is advisory, so the client runs without it.
type noopCache struct{}

func (noopCache) Messages(context.Context, string) ([]contract.Message, error) {
	return nil, cache.ErrNoEntry
}

func (noopCache) PutMessages(context.Context, string, []contract.Message) error {
	return nil
}

type app struct {
	in      *bufio.Scanner
	session *auth.Session
	store   *store.Store
	cache   chat.MessageCache
	ctx     context.Context

	groups *chat.GroupList
	thread *chat.Thread
}

func main() {
	usernamePtr := flag.String("username", "", "username to sign in with")
	passwordPtr := flag.String("password", "", "password")
	emailPtr := flag.String("email", "", "email (registration only)")
	registerPtr := flag.Bool("register", false, "create a new account")
	flag.Parse()

	cfg := config.Load()
	if cfg.APIKey == "" {
		stdlog.Fatalf("FIREBASE_API_KEY is required")
	}

	logger := log.Open(cfg.LogPath)
	ctx := log.WithLogger(context.Background(), logger)

	provider, err := auth.NewProvider(ctx, cfg.APIKey)
	if err != nil {
		stdlog.Fatalf("initializing identity provider: %v", err)
	}
	st, err := store.New(ctx, cfg.ProjectID)
	if err != nil {
		stdlog.Fatalf("connecting to firestore: %v", err)
	}
	defer st.Close()

	a := &app{
		in:      bufio.NewScanner(os.Stdin),
		session: &auth.Session{},
		store:   st,
		cache:   openCache(logger, cfg.CachePath),
		ctx:     ctx,
	}

	// signed-out transition is an unmount path: tear everything down
	a.session.OnChange(func(cred *auth.Credential) {
		if cred == nil {
			a.closeThread()
			a.closeGroups()
		}
	})

	flow := &auth.Flow{Provider: provider, Directory: st, Session: a.session}
	if err := a.signIn(flow, *registerPtr, *usernamePtr, *emailPtr, *passwordPtr); err != nil {
		// the provider message is shown as-is
		stdlog.Fatalf("%v", err)
	}

	me := a.session.Current()
	a.groups = chat.OpenGroupList(ctx, st.GroupsOf(ctx, me.UID))

	fmt.Printf("signed in as %s\n", me.Email)
	fmt.Println("commands: groups, open <n>, msgs, send <text>, image <path>, new <name>, users, pick <n>, logout, quit")
	a.loop()
}

func openCache(logger *slog.Logger, path string) chat.MessageCache {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	c, err := cache.Open(path)
	if err != nil {
		logger.Warn("thread cache unavailable", slog.String("errorMsg", err.Error()))
		return noopCache{}
	}
	return c
}

func (a *app) signIn(flow *auth.Flow, register bool, username, email, password string) error {
	if username == "" {
		username = a.prompt("username: ")
	}
	if password == "" {
		password = a.prompt("password: ")
	}
	if register {
		if email == "" {
			email = a.prompt("email: ")
		}
		_, err := flow.Register(a.ctx, username, email, password)
		return err
	}
	_, err := flow.Login(a.ctx, username, password)
	return err
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.in.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) loop() {
	var roster *chat.Roster
	defer func() {
		if roster != nil {
			roster.Close()
		}
		a.closeThread()
		a.closeGroups()
	}()

	for {
		line := a.prompt("> ")
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "groups":
			a.printGroups()
		case "open":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: open <n>")
				continue
			}
			a.openThread(n)
		case "msgs":
			a.printThread()
		case "send":
			if a.thread == nil {
				fmt.Println("open a group first")
				continue
			}
			if err := a.thread.SendText(a.ctx, arg); err != nil {
				fmt.Println(err)
			}
		case "image":
			a.sendImage(arg)
		case "new":
			if roster == nil {
				roster = chat.OpenRoster(a.ctx, a.session.Current().UID, a.store, a.store.Users(a.ctx))
				fmt.Println("list members with 'users', select with 'pick <n>', then run 'new <name>' again to create")
				continue
			}
			id, err := roster.Create(a.ctx, arg)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("created group %s\n", id)
			roster.Close()
			roster = nil
			// go straight into the new thread, as the mobile client does
			a.mountThread(id, arg)
		case "users":
			if roster == nil {
				fmt.Println("start with 'new <name>'")
				continue
			}
			for i, u := range roster.Users() {
				fmt.Printf("%d. %s\n", i+1, displayName(u))
			}
			if errMsg := roster.Err(); errMsg != "" {
				fmt.Println(errMsg)
			}
		case "pick":
			if roster == nil {
				fmt.Println("start with 'new <name>'")
				continue
			}
			n, err := strconv.Atoi(arg)
			users := roster.Users()
			if err != nil || n < 1 || n > len(users) {
				fmt.Println("usage: pick <n>")
				continue
			}
			roster.Toggle(users[n-1].UID)
			fmt.Printf("selected: %d member(s)\n", len(roster.Selected()))
		case "logout":
			a.session.SignOut()
			fmt.Println("signed out")
			return
		case "quit", "exit":
			return
		case "":
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func (a *app) printGroups() {
	if errMsg := a.groups.Err(); errMsg != "" {
		fmt.Println(errMsg)
		return
	}
	groups := a.groups.Groups()
	if len(groups) == 0 {
		fmt.Println("No groups yet.")
		return
	}
	for i, g := range groups {
		last := g.LastMessage
		if last == "" {
			last = "No messages yet"
		}
		fmt.Printf("%d. %s — %s\n", i+1, g.Name, last)
	}
}

func (a *app) openThread(n int) {
	groups := a.groups.Groups()
	if n < 1 || n > len(groups) {
		fmt.Println("no such group")
		return
	}
	g := groups[n-1]
	a.mountThread(g.ID, g.Name)
}

func (a *app) mountThread(groupID, name string) {
	// scope change: the previous subscription goes down before the new one
	// comes up, so there is never overlap or duplicate delivery
	a.closeThread()
	me := a.session.Current()
	sender := store.Sender{UID: me.UID, Email: me.Email}
	a.thread = chat.OpenThread(a.ctx, groupID, sender, a.store, a.cache, a.store.Thread(a.ctx, groupID))
	fmt.Printf("opened %s\n", name)
	a.printThread()
}

func (a *app) printThread() {
	if a.thread == nil {
		fmt.Println("open a group first")
		return
	}
	if errMsg := a.thread.Err(); errMsg != "" {
		fmt.Println(errMsg)
		return
	}
	msgs := a.thread.Messages()
	// stored newest first; print oldest first for reading order
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.IsImage() {
			fmt.Printf("[%s] <%s image, %d bytes>\n", m.SenderEmail, m.ImageType, len(m.ImageBase64))
			continue
		}
		fmt.Printf("[%s] %s\n", m.SenderEmail, m.Text)
	}
}

func (a *app) sendImage(path string) {
	if a.thread == nil {
		fmt.Println("open a group first")
		return
	}
	asset, err := picker.Pick(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	if asset == nil {
		fmt.Println("no image selected")
		return
	}
	if err := a.thread.SendImage(a.ctx, asset.Base64, asset.MIME); err != nil {
		fmt.Println(err)
	}
}

func (a *app) closeThread() {
	if a.thread != nil {
		a.thread.Close()
		a.thread = nil
	}
}

func (a *app) closeGroups() {
	if a.groups != nil {
		a.groups.Close()
		a.groups = nil
	}
}

func displayName(u contract.User) string {
	if u.Username != "" {
		return u.Username
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
