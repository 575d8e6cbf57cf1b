// Package kubernetes publishes the frontend environment to a cluster as a ConfigMap
package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/coffeeshop/frontend-environment/internal/environment"
)

const (
	// ConfigMapKey is the data key holding the environment JSON.
	ConfigMapKey = "environment.json"

	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedByValue = "coffeeshop-environment"
)

type Client struct {
	client client.Client
}

func NewClient() (*Client, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	cl, err := client.New(cfg, client.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return NewClientFromClient(cl), nil
}

func NewClientFromClient(cl client.Client) *Client {
	return &Client{
		client: cl,
	}
}

func BuildConfigMap(namespace, name string, env environment.Environment) (*corev1.ConfigMap, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode environment: %w", err)
	}

	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			Labels: map[string]string{
				ManagedByLabel: ManagedByValue,
			},
		},
		Data: map[string]string{
			ConfigMapKey: string(data),
		},
	}, nil
}

// ApplyEnvironment creates the ConfigMap, or overwrites its environment
// data if it already exists. Other data keys and labels are preserved.
func (c *Client) ApplyEnvironment(ctx context.Context, namespace, name string, env environment.Environment) (bool, error) {
	desired, err := BuildConfigMap(namespace, name, env)
	if err != nil {
		return false, err
	}

	existing := &corev1.ConfigMap{}
	key := types.NamespacedName{
		Namespace: namespace,
		Name:      name,
	}

	if err := c.client.Get(ctx, key, existing); err != nil {
		if !apierrors.IsNotFound(err) {
			return false, fmt.Errorf("failed to get configmap: %w", err)
		}

		if err := c.client.Create(ctx, desired); err != nil {
			return false, fmt.Errorf("failed to create configmap: %w", err)
		}

		return true, nil
	}

	if existing.Labels == nil {
		existing.Labels = map[string]string{}
	}
	for k, v := range desired.Labels {
		existing.Labels[k] = v
	}

	if existing.Data == nil {
		existing.Data = map[string]string{}
	}
	existing.Data[ConfigMapKey] = desired.Data[ConfigMapKey]

	if err := c.client.Update(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to update configmap: %w", err)
	}

	return false, nil
}
