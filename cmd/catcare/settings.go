package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/catcare"
	"github.com/aretw0/catcare/pkg/settings"
)

// withSettings opens the service and hands its settings manager to fn.
func withSettings(fn func(ctx context.Context, mgr *settings.Manager) error) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	return fn(context.Background(), catcare.Settings(svc))
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Show guest access settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			printGuest(cmd.OutOrStdout(), mgr.Guest())
			return nil
		})
	},
}

func guestAction(use, short string, fn func(*settings.Manager, context.Context) (settings.GuestSettings, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
				g, err := fn(mgr, ctx)
				if err != nil {
					return err
				}
				printGuest(cmd.OutOrStdout(), g)
				return nil
			})
		},
	}
}

var guestPermCmd = &cobra.Command{
	Use:   "perm [permission]",
	Short: "Toggle a guest permission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			g, err := mgr.TogglePermission(ctx, args[0])
			if err != nil {
				return err
			}
			printGuest(cmd.OutOrStdout(), g)
			return nil
		})
	},
}

func printGuest(w io.Writer, g settings.GuestSettings) {
	mode := color.RedString("off")
	if g.GuestMode {
		mode = color.GreenString("on")
	}
	code := g.Code()
	if code == "" {
		code = "(none)"
	}
	fmt.Fprintf(w, "guest mode: %s\n", mode)
	fmt.Fprintf(w, "guest code: %s\n", code)

	perms := make([]string, 0, len(g.GuestPermissions))
	for p := range g.GuestPermissions {
		perms = append(perms, p)
	}
	slices.Sort(perms)
	for _, p := range perms {
		fmt.Fprintf(w, "  %-14s %s\n", p, onOff(g.GuestPermissions[p]))
	}
}

var notifyCmd = &cobra.Command{
	Use:   "notify [channel]",
	Short: "Show notification settings, or toggle one channel",
	Long:  `Without arguments, notify prints every channel. With a channel name (feeding, grooming, vet, updates, promotions) it flips that channel.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			n := mgr.Notifications()
			if len(args) == 1 {
				var err error
				if n, err = mgr.ToggleNotification(ctx, args[0]); err != nil {
					return err
				}
			}
			printNotifications(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

var notifyOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn off every notification channel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			if err := mgr.TurnOffAll(ctx); err != nil {
				return err
			}
			printNotifications(cmd.OutOrStdout(), mgr.Notifications())
			return nil
		})
	},
}

func printNotifications(w io.Writer, n settings.NotificationSettings) {
	rows := []struct {
		name string
		on   bool
	}{
		{settings.NotifyFeeding, n.Feeding},
		{settings.NotifyGrooming, n.Grooming},
		{settings.NotifyVet, n.Vet},
		{settings.NotifyUpdates, n.Updates},
		{settings.NotifyPromotions, n.Promotions},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-11s %s\n", r.name, onOff(r.on))
	}
	fmt.Fprintf(w, "%d of %d enabled\n", n.EnabledCount(), len(rows))
}

var avatarCmd = &cobra.Command{
	Use:   "avatar [preset]",
	Short: "Show the profile avatar, or select a preset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			if len(args) == 1 {
				if err := mgr.SelectPreset(ctx, args[0]); err != nil {
					return fmt.Errorf("%w (choose one of %v)", err, settings.PresetAvatars)
				}
			}
			src, custom, err := mgr.Avatar(ctx)
			if err != nil {
				return err
			}
			if custom {
				fmt.Fprintf(cmd.OutOrStdout(), "custom image (%d bytes)\n", len(src))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), src)
			return nil
		})
	},
}

var avatarResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the avatar with a random preset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			src, err := mgr.ResetAvatar(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), src)
			return nil
		})
	},
}

var avatarCustomCmd = &cobra.Command{
	Use:   "custom [image]",
	Short: "Upload an image file as the avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
		return withSettings(func(ctx context.Context, mgr *settings.Manager) error {
			if err := mgr.SetCustomAvatar(ctx, uri); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "custom image (%d bytes)\n", len(uri))
			return nil
		})
	},
}

func onOff(b bool) string {
	if b {
		return color.GreenString("on")
	}
	return color.RedString("off")
}

func init() {
	guestCmd.AddCommand(
		guestAction("on", "Enable guest mode", (*settings.Manager).EnableGuestMode),
		guestAction("off", "Disable guest mode", (*settings.Manager).DisableGuestMode),
		guestAction("code", "Generate a new guest code", (*settings.Manager).RegenerateGuestCode),
		guestPermCmd,
	)
	notifyCmd.AddCommand(notifyOffCmd)
	avatarCmd.AddCommand(avatarCustomCmd, avatarResetCmd)
	rootCmd.AddCommand(guestCmd, notifyCmd, avatarCmd)
}
